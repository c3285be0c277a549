package auth

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sm "github.com/opsdeck/backoffice/internal/server/middleware"
	"github.com/opsdeck/backoffice/internal/session"
)

// Handler serves login, refresh and sign-out.
type Handler struct {
	Repo     *UserRepo
	JWT      *JWT
	Sessions *session.Store
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse either carries a usable bearer token, or an interim token
// when the account still has to pass the two-factor check.
type tokenResponse struct {
	AccessToken       string    `json:"access_token,omitempty"`
	ExpiresAt         time.Time `json:"expires_at,omitempty"`
	TwoFactorRequired bool      `json:"two_factor_required,omitempty"`
	InterimToken      string    `json:"interim_token,omitempty"`
}

type loginInput struct {
	Body loginBody
}

type loginOutput struct {
	Body tokenResponse
}

// Register wires the public auth endpoints. These are registered before the
// auth middleware so they stay reachable without a token.
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Login",
		Tags:        []string{"Auth"},
	}, h.login)

	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/v1/auth/refresh",
		Summary:     "Refresh token",
		Tags:        []string{"Auth"},
	}, h.refresh)
}

// RegisterSignOut wires the authenticated sign-out endpoint.
func RegisterSignOut(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "signOut",
		Method:      http.MethodPost,
		Path:        "/v1/auth/sign-out",
		Summary:     "Sign out",
		Tags:        []string{"Auth"},
	}, h.signOut)
}

func (h *Handler) login(ctx context.Context, in *loginInput) (*loginOutput, error) {
	u, err := h.Repo.GetByUsername(ctx, in.Body.Username)
	if err != nil || u == nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	if u.TOTPEnabled {
		interim := uuid.NewString()
		if err := h.Sessions.PutInterim(ctx, interim, session.Interim{UserID: u.ID, Secret: u.TOTPSecret}); err != nil {
			return nil, err
		}
		return &loginOutput{Body: tokenResponse{TwoFactorRequired: true, InterimToken: interim}}, nil
	}
	tok, err := h.JWT.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{AccessToken: tok, ExpiresAt: time.Now().Add(h.JWT.Expiry())}}, nil
}

type refreshInput struct{}

func (h *Handler) refresh(ctx context.Context, _ *refreshInput) (*loginOutput, error) {
	sub := sm.UserFromContext(ctx)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || sub == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	tok, err := h.JWT.Generate(uid, sm.RoleFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{AccessToken: tok, ExpiresAt: time.Now().Add(h.JWT.Expiry())}}, nil
}

type signOutOutput struct {
	Body struct {
		SignedOut bool `json:"signed_out"`
	}
}

func (h *Handler) signOut(ctx context.Context, _ *struct{}) (*signOutOutput, error) {
	sub := sm.UserFromContext(ctx)
	if sub == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	if h.Sessions != nil {
		if err := h.Sessions.Clear(ctx, sub); err != nil {
			return nil, err
		}
	}
	out := &signOutOutput{}
	out.Body.SignedOut = true
	return out, nil
}
