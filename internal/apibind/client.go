package apibind

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// APIError is an application-level failure: a well-formed response whose
// code is non-zero. It is returned as an ordinary error value so callers can
// branch on it with errors.As instead of exception-style handling.
type APIError struct {
	Code    int    `json:"errorCode"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Result is the canonical shape every list-style response normalizes to.
// Raw keeps the payload for non-list calls.
type Result struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
	Raw   json.RawMessage   `json:"-"`
}

// envelope covers both response shapes seen across backend endpoints:
// {code, data, count} and {code, data: {data, total}}.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

type nestedList struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

// TokenSource supplies the bearer token attached to every call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource holding a fixed token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client executes resolved bindings against the backend base URL. GET calls
// are retried on transport failure; anything else runs exactly once so a
// confirm or reject is never duplicated by the client.
type Client struct {
	get    *resty.Client
	act    *resty.Client
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets the per-request timeout on both underlying clients.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.get.SetTimeout(d)
		c.act.SetTimeout(d)
	}
}

// New returns a Client for the given backend base URL.
func New(base string, opts ...Option) *Client {
	c := &Client{
		get: resty.New().SetBaseURL(base).
			SetRetryCount(2).
			SetRetryWaitTime(200 * time.Millisecond),
		act: resty.New().SetBaseURL(base),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do executes a resolved declaration. Path parameters are substituted from
// params, the remainder become query parameters, and body is sent as JSON
// for non-GET methods. A non-zero envelope code yields (*APIError, nil
// result); transport failures are returned as plain errors.
func (c *Client) Do(ctx context.Context, decl pagedef.APIDecl, params map[string]string, body any) (*Result, error) {
	path, rest, err := ExpandPath(decl.Path, params)
	if err != nil {
		return nil, err
	}
	cli := c.act
	method := decl.Method
	if method == "" || method == http.MethodGet {
		method = http.MethodGet
		cli = c.get
	}
	req := cli.R().SetContext(ctx).SetQueryParams(rest)
	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.SetAuthToken(tok)
		}
	}
	if body != nil && method != http.MethodGet {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	var env envelope
	if uerr := json.Unmarshal(resp.Body(), &env); uerr != nil {
		if resp.IsError() {
			return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status())
		}
		return nil, fmt.Errorf("%s %s: malformed response: %w", method, path, uerr)
	}
	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, Message: env.Message}
	}
	return normalize(&env), nil
}

// normalize folds the two observed list envelopes into one {items, total}
// contract. Non-list payloads keep their raw data with a zero item list.
func normalize(env *envelope) *Result {
	res := &Result{Raw: env.Data}
	if len(env.Data) == 0 {
		return res
	}
	var nested nestedList
	if err := json.Unmarshal(env.Data, &nested); err == nil && nested.Data != nil {
		res.Items = nested.Data
		res.Total = nested.Total
		return res
	}
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err == nil {
		res.Items = items
		if env.Count != nil {
			res.Total = *env.Count
		} else {
			res.Total = len(items)
		}
	}
	return res
}
