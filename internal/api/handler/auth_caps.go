package handler

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/danielgtaylor/huma/v2"

	"github.com/opsdeck/backoffice/internal/server/middleware"
)

// AuthHandler answers what the signed-in user is allowed to do, so the
// console can hide affordances it would only reject later.
type AuthHandler struct {
	Enf   *casbin.Enforcer
	Roles middleware.RoleResolver
}

// Capabilities maps capability keys to allowance.
type Capabilities map[string]bool

type capsOut struct {
	Body struct {
		Capabilities Capabilities `json:"capabilities"`
	}
}

var capMatrix = map[string]struct{ Path, Method string }{
	"pages:list":   {"/v1/pages", "GET"},
	"pages:create": {"/v1/pages", "POST"},
	"pages:update": {"/v1/pages/{id}", "PUT"},
	"pages:clone":  {"/v1/pages/{id}/clone", "POST"},
	"pages:render": {"/v1/pages/{id}/render", "GET"},
	"pages:data":   {"/v1/pages/{id}/data", "GET"},
	"pages:submit": {"/v1/pages/{id}/submit", "POST"},
}

// RegisterAuthCaps registers the capability endpoint.
func RegisterAuthCaps(api huma.API, h *AuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "authCapabilities",
		Method:      http.MethodGet,
		Path:        "/v1/auth/capabilities",
		Summary:     "Capabilities of the current user",
		Tags:        []string{"Auth"},
	}, h.capabilities)
}

func (h *AuthHandler) capabilities(ctx context.Context, _ *struct{}) (*capsOut, error) {
	sub := middleware.UserFromContext(ctx)
	subjects := []string{sub}
	if role := middleware.RoleFromContext(ctx); role != "" {
		subjects = append(subjects, role)
	}
	if h.Roles != nil {
		if roles, err := h.Roles(ctx, sub); err == nil {
			subjects = append(subjects, roles...)
		}
	}
	caps := Capabilities{}
	for key, op := range capMatrix {
		allowed := false
		for _, s := range subjects {
			if ok, _ := h.Enf.Enforce(s, op.Path, op.Method); ok {
				allowed = true
				break
			}
		}
		caps[key] = allowed
	}
	out := &capsOut{}
	out.Body.Capabilities = caps
	return out, nil
}
