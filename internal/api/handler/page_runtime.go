package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opsdeck/backoffice/internal/apibind"
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/query"
	"github.com/opsdeck/backoffice/internal/rbac"
	"github.com/opsdeck/backoffice/internal/render"
	"github.com/opsdeck/backoffice/internal/render/controlpolicy"
	"github.com/opsdeck/backoffice/internal/server/middleware"
	"github.com/opsdeck/backoffice/pkg/metrics"
)

// RuntimeHandler serves the render-time endpoints of a page: the resolved
// plan, the read data path and the submit/button action paths.
type RuntimeHandler struct {
	Repo     *pagedef.Repo
	Resolver *render.Resolver
	Client   *apibind.Client
	Policy   *controlpolicy.Store
	Guard    *apibind.Guard
	Roles    middleware.RoleResolver
}

// RegisterRuntime registers the render-time endpoints.
func RegisterRuntime(api huma.API, h *RuntimeHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "renderPage",
		Method:      http.MethodGet,
		Path:        "/v1/pages/{id}/render",
		Summary:     "Resolve the rendering plan for a page",
		Tags:        []string{"Runtime"},
	}, h.renderPlan)
	huma.Register(api, huma.Operation{
		OperationID: "pageData",
		Method:      http.MethodGet,
		Path:        "/v1/pages/{id}/data",
		Summary:     "Load data through the page's read binding",
		Tags:        []string{"Runtime"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusBadGateway, http.StatusConflict},
	}, h.data)
	huma.Register(api, huma.Operation{
		OperationID: "submitPage",
		Method:      http.MethodPost,
		Path:        "/v1/pages/{id}/submit",
		Summary:     "Validate, transform and submit form values",
		Tags:        []string{"Runtime"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.submit)
	huma.Register(api, huma.Operation{
		OperationID: "pageButton",
		Method:      http.MethodPost,
		Path:        "/v1/pages/{id}/buttons/{label}",
		Summary:     "Execute a page button's binding",
		Tags:        []string{"Runtime"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.button)
}

func (h *RuntimeHandler) allowed(ctx context.Context, def *pagedef.PageDefinition) error {
	user := middleware.UserFromContext(ctx)
	roles := []string{middleware.RoleFromContext(ctx)}
	if h.Roles != nil {
		if extra, err := h.Roles(ctx, user); err == nil {
			roles = append(roles, extra...)
		}
	}
	if !rbac.PageAllowed(def.Roles, roles) {
		return huma.Error403Forbidden("page not permitted for your role")
	}
	return nil
}

type renderInput struct {
	ID       string `path:"id"`
	Mode     string `query:"mode" enum:"create,edit,view" required:"false"`
	RecordID string `query:"recordId" required:"false"`
}

type renderOutput struct {
	Body render.Plan
}

func (h *RuntimeHandler) renderPlan(ctx context.Context, in *renderInput) (*renderOutput, error) {
	mode, err := render.ParseMode(in.Mode)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	plan, err := h.Resolver.Resolve(ctx, in.ID, mode, in.RecordID)
	if err != nil {
		if errors.Is(err, render.ErrPageNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	if err := h.allowed(ctx, plan.Page); err != nil {
		return nil, err
	}
	strategy := "default"
	if plan.Template != "" {
		strategy = "template"
	} else if plan.Form != nil {
		plan.Form = render.BuildFormWithPolicy(plan.Page, h.Policy.Policy())
	}
	metrics.PageRenders.WithLabelValues(in.ID, strategy).Inc()
	return &renderOutput{Body: *plan}, nil
}

type dataInput struct {
	ID       string `path:"id"`
	Page     int    `query:"page" default:"1" minimum:"1"`
	PageSize int    `query:"pageSize" default:"20" minimum:"1" maximum:"500"`
	Sort     string `query:"sort" required:"false"`
	Order    string `query:"order" enum:"asc,desc" required:"false"`
	Filter   string `query:"filter" required:"false" doc:"JSON object of free-text filter fields"`
	Screen   string `query:"screen" required:"false" doc:"Opaque screen key for stale-response suppression"`
}

type dataOutput struct {
	Body struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
}

func (h *RuntimeHandler) data(ctx context.Context, in *dataInput) (*dataOutput, error) {
	def, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	if err := h.allowed(ctx, def); err != nil {
		return nil, err
	}
	decl, err := apibind.ResolveRead(def)
	if err != nil {
		// A read naming a missing api must fail observably, never render an
		// empty unflagged table.
		metrics.BindingCalls.WithLabelValues(in.ID, def.Read, "unbound").Inc()
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	params := query.Params{Page: in.Page, PageSize: in.PageSize, Sort: in.Sort, Order: in.Order}
	if in.Order == "" && in.Sort != "" {
		params.Order = query.OrderDesc
	}
	if in.Filter != "" {
		if err := json.Unmarshal([]byte(in.Filter), &params.Filters); err != nil {
			return nil, huma.Error422UnprocessableEntity("filter must be a JSON object of strings")
		}
	}

	var seq uint64
	screen := in.Screen
	if screen == "" {
		screen = middleware.UserFromContext(ctx) + ":" + in.ID
	}
	seq = h.Guard.Begin(screen)

	res, err := h.Client.Do(ctx, decl, params.Values(), nil)
	if err != nil {
		var apiErr *apibind.APIError
		if errors.As(err, &apiErr) {
			metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "api_error").Inc()
			return nil, huma.Error502BadGateway(apiErr.Message)
		}
		metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "transport_error").Inc()
		return nil, huma.Error502BadGateway("data source unavailable")
	}
	if !h.Guard.Accept(screen, seq) {
		// A newer request for the same screen was issued while this one was
		// in flight; its response must win.
		metrics.StaleResponses.Inc()
		return nil, huma.Error409Conflict("superseded by a newer request")
	}
	metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "ok").Inc()
	out := &dataOutput{}
	out.Body.Items = res.Items
	out.Body.Total = res.Total
	return out, nil
}

type submitInput struct {
	ID   string `path:"id"`
	Body struct {
		API    string            `json:"api"`
		Params map[string]string `json:"params,omitempty"`
		Values map[string]any    `json:"values"`
	}
}

type submitOutput struct {
	Body struct {
		Result json.RawMessage `json:"result,omitempty"`
	}
}

func (h *RuntimeHandler) submit(ctx context.Context, in *submitInput) (*submitOutput, error) {
	def, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	if err := h.allowed(ctx, def); err != nil {
		return nil, err
	}
	decl, err := apibind.Resolve(def, in.Body.API)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	if res := render.Validate(def.Schema, in.Body.Values); !res.OK() {
		details := make([]error, 0, len(res.Errors))
		for _, fe := range res.Errors {
			details = append(details, &huma.ErrorDetail{Location: "body.values." + fe.DataIndex, Message: fe.Message})
		}
		return nil, huma.NewError(http.StatusUnprocessableEntity, "validation failed", details...)
	}
	values := render.TransformValues(def.Schema, in.Body.Values)
	res, err := h.Client.Do(ctx, decl, in.Body.Params, values)
	if err != nil {
		var apiErr *apibind.APIError
		if errors.As(err, &apiErr) {
			metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "api_error").Inc()
			return nil, huma.Error502BadGateway(apiErr.Message)
		}
		metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "transport_error").Inc()
		return nil, huma.Error502BadGateway("submit failed")
	}
	metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "ok").Inc()
	out := &submitOutput{}
	out.Body.Result = res.Raw
	return out, nil
}

type buttonInput struct {
	ID    string `path:"id"`
	Label string `path:"label"`
	Body  struct {
		Params map[string]string `json:"params,omitempty"`
		Values map[string]any    `json:"values,omitempty"`
	}
}

// button executes a button's binding exactly once per request; the client
// disables the control while the call is in flight and is never retried
// here.
func (h *RuntimeHandler) button(ctx context.Context, in *buttonInput) (*submitOutput, error) {
	def, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	if err := h.allowed(ctx, def); err != nil {
		return nil, err
	}
	btn, ok := def.Button(in.Label)
	if !ok {
		return nil, huma.Error404NotFound("button not found")
	}
	decl, err := apibind.Resolve(def, btn.APIName)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	res, err := h.Client.Do(ctx, decl, in.Body.Params, in.Body.Values)
	if err != nil {
		var apiErr *apibind.APIError
		if errors.As(err, &apiErr) {
			metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "api_error").Inc()
			return nil, huma.Error502BadGateway(apiErr.Message)
		}
		metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "transport_error").Inc()
		return nil, huma.Error502BadGateway("action failed")
	}
	metrics.BindingCalls.WithLabelValues(in.ID, decl.Name, "ok").Inc()
	out := &submitOutput{}
	out.Body.Result = res.Raw
	return out, nil
}
