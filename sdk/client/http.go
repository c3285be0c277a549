// Package client provides REST access to the backoffice API for tooling.
package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// Client provides REST access to the page-definition API.
type Client interface {
	Login(ctx context.Context, username, password string) (string, error)
	List(ctx context.Context, limit, offset int) ([]*pagedef.PageDefinition, int, error)
	Get(ctx context.Context, id string) (*pagedef.PageDefinition, error)
	Create(ctx context.Context, def *pagedef.PageDefinition) (*pagedef.PageDefinition, error)
	Update(ctx context.Context, def *pagedef.PageDefinition) (*pagedef.PageDefinition, error)
}

type httpClient struct {
	base string
	http *resty.Client
}

// Option configures the client.
type Option func(*httpClient)

// WithToken sets the Authorization token.
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// NewHTTP returns a new Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: base, http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	InterimToken      string `json:"interim_token"`
}

func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post(c.base + "/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", restyErr(resp)
	}
	if out.TwoFactorRequired {
		return "", fmt.Errorf("account requires two-factor sign-in; use the console")
	}
	return out.AccessToken, nil
}

type listResponse struct {
	Items []*pagedef.PageDefinition `json:"items"`
	Total int                       `json:"total"`
}

func (c *httpClient) List(ctx context.Context, limit, offset int) ([]*pagedef.PageDefinition, int, error) {
	var out listResponse
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetQueryParam("offset", fmt.Sprint(offset)).
		SetResult(&out).
		Get(c.base + "/v1/pages")
	if err != nil {
		return nil, 0, err
	}
	if resp.IsError() {
		return nil, 0, restyErr(resp)
	}
	return out.Items, out.Total, nil
}

func (c *httpClient) Get(ctx context.Context, id string) (*pagedef.PageDefinition, error) {
	var out pagedef.PageDefinition
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/pages/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return &out, nil
}

type savedResponse struct {
	Page     *pagedef.PageDefinition `json:"page"`
	Warnings []pagedef.Warning       `json:"warnings"`
}

func (c *httpClient) Create(ctx context.Context, def *pagedef.PageDefinition) (*pagedef.PageDefinition, error) {
	var out savedResponse
	resp, err := c.http.R().SetContext(ctx).SetBody(def).SetResult(&out).Post(c.base + "/v1/pages")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out.Page, nil
}

func (c *httpClient) Update(ctx context.Context, def *pagedef.PageDefinition) (*pagedef.PageDefinition, error) {
	var out savedResponse
	resp, err := c.http.R().SetContext(ctx).SetBody(def).SetResult(&out).Put(c.base + "/v1/pages/" + def.ID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out.Page, nil
}

func restyErr(resp *resty.Response) error {
	return fmt.Errorf("%s", resp.Status())
}
