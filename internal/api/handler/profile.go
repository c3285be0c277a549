package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opsdeck/backoffice/internal/server/middleware"
	"github.com/opsdeck/backoffice/internal/session"
)

// ProfileHandler serves the per-user theme overrides held in the session
// store.
type ProfileHandler struct {
	Sessions *session.Store
}

type themeOutput struct {
	Body struct {
		Theme json.RawMessage `json:"theme"`
	}
}

type putThemeInput struct {
	Body struct {
		Theme json.RawMessage `json:"theme"`
	}
}

// RegisterProfile registers the theme endpoints.
func RegisterProfile(api huma.API, h *ProfileHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getTheme",
		Method:      http.MethodGet,
		Path:        "/v1/profile/theme",
		Summary:     "Get theme overrides",
		Tags:        []string{"Profile"},
	}, h.getTheme)
	huma.Register(api, huma.Operation{
		OperationID: "putTheme",
		Method:      http.MethodPut,
		Path:        "/v1/profile/theme",
		Summary:     "Store theme overrides",
		Tags:        []string{"Profile"},
	}, h.putTheme)
}

func (h *ProfileHandler) getTheme(ctx context.Context, _ *struct{}) (*themeOutput, error) {
	user := middleware.UserFromContext(ctx)
	out := &themeOutput{}
	theme, err := h.Sessions.Theme(ctx, user)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			out.Body.Theme = json.RawMessage("{}")
			return out, nil
		}
		return nil, err
	}
	out.Body.Theme = theme
	return out, nil
}

func (h *ProfileHandler) putTheme(ctx context.Context, in *putThemeInput) (*themeOutput, error) {
	user := middleware.UserFromContext(ctx)
	if err := h.Sessions.PutTheme(ctx, user, in.Body.Theme); err != nil {
		return nil, err
	}
	out := &themeOutput{}
	out.Body.Theme = in.Body.Theme
	return out, nil
}
