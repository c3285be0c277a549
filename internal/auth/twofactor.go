package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pquerna/otp/totp"

	sm "github.com/opsdeck/backoffice/internal/server/middleware"
	"github.com/opsdeck/backoffice/internal/session"
)

// TwoFactorIssuer is the issuer shown by authenticator apps.
const TwoFactorIssuer = "backoffice"

type setupOutput struct {
	Body struct {
		Secret string `json:"secret"`
		OTPURL string `json:"otp_url"`
	}
}

type verifySetupInput struct {
	Body struct {
		Token  string `json:"token"`
		Secret string `json:"secret"`
	}
}

type verifyInput struct {
	Body struct {
		InterimToken string `json:"interim_token"`
		Token        string `json:"token"`
	}
}

type verifyOutput struct {
	Body struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
		UserInfo    userInfo  `json:"userInfo"`
	}
}

type userInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type okOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

// RegisterTwoFactorSetup wires the authenticated setup endpoints.
func RegisterTwoFactorSetup(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "twoFactorSetup",
		Method:      http.MethodGet,
		Path:        "/admin/2fa/setup",
		Summary:     "Begin two-factor setup",
		Tags:        []string{"Auth"},
	}, h.twoFactorSetup)
	huma.Register(api, huma.Operation{
		OperationID: "twoFactorVerifySetup",
		Method:      http.MethodPost,
		Path:        "/admin/2fa/verify-setup",
		Summary:     "Confirm two-factor setup",
		Tags:        []string{"Auth"},
	}, h.twoFactorVerifySetup)
}

// RegisterTwoFactorVerify wires the public verification endpoint used to
// complete a sign-in.
func RegisterTwoFactorVerify(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "twoFactorVerify",
		Method:      http.MethodPost,
		Path:        "/admin/2fa/verify",
		Summary:     "Complete two-factor sign-in",
		Tags:        []string{"Auth"},
	}, h.twoFactorVerify)
}

func (h *Handler) twoFactorSetup(ctx context.Context, _ *struct{}) (*setupOutput, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: TwoFactorIssuer, AccountName: u.Username})
	if err != nil {
		return nil, err
	}
	out := &setupOutput{}
	out.Body.Secret = key.Secret()
	out.Body.OTPURL = key.URL()
	return out, nil
}

func (h *Handler) twoFactorVerifySetup(ctx context.Context, in *verifySetupInput) (*okOutput, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !totp.Validate(in.Body.Token, in.Body.Secret) {
		return nil, huma.Error401Unauthorized("invalid code")
	}
	if err := h.Repo.EnableTOTP(ctx, u.ID, in.Body.Secret); err != nil {
		return nil, err
	}
	out := &okOutput{}
	out.Body.OK = true
	return out, nil
}

func (h *Handler) twoFactorVerify(ctx context.Context, in *verifyInput) (*verifyOutput, error) {
	interim, err := h.Sessions.TakeInterim(ctx, in.Body.InterimToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, huma.Error401Unauthorized("interim token expired")
		}
		return nil, err
	}
	if !totp.Validate(in.Body.Token, interim.Secret) {
		return nil, huma.Error401Unauthorized("invalid code")
	}
	u, err := h.Repo.GetByID(ctx, interim.UserID)
	if err != nil || u == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	tok, err := h.JWT.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	out := &verifyOutput{}
	out.Body.AccessToken = tok
	out.Body.ExpiresAt = time.Now().Add(h.JWT.Expiry())
	out.Body.UserInfo = userInfo{ID: u.ID, Username: u.Username, Role: u.Role}
	return out, nil
}

func (h *Handler) currentUser(ctx context.Context) (*User, error) {
	sub := sm.UserFromContext(ctx)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	u, err := h.Repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	return u, nil
}
