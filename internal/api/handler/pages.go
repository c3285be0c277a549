package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opsdeck/backoffice/internal/audit"
	"github.com/opsdeck/backoffice/internal/events"
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/server/middleware"
)

// PageHandler serves the page-definition editor endpoints.
type PageHandler struct {
	Repo     *pagedef.Repo
	Recorder *audit.Recorder
}

type pageBody struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Schema      []pagedef.FieldSchema  `json:"schema,omitempty"`
	Grid        []pagedef.ColumnSchema `json:"grid,omitempty"`
	APIs        []pagedef.APIDecl      `json:"apis,omitempty"`
	Read        string                 `json:"read,omitempty"`
	Buttons     []pagedef.ButtonDecl   `json:"buttons,omitempty"`
	Roles       []string               `json:"roles,omitempty"`
	Settings    pagedef.Settings       `json:"settings"`
}

func (b *pageBody) definition() *pagedef.PageDefinition {
	return &pagedef.PageDefinition{
		Name:        b.Name,
		Description: b.Description,
		Schema:      b.Schema,
		Grid:        b.Grid,
		APIs:        b.APIs,
		Read:        b.Read,
		Buttons:     b.Buttons,
		Roles:       b.Roles,
		Settings:    b.Settings,
	}
}

// savedPage is returned from every mutating editor call. Warnings carry the
// non-blocking problems found at save time; saving proceeds regardless and
// the broken parts fail at load time instead.
type savedPage struct {
	Page     *pagedef.PageDefinition `json:"page"`
	Warnings []pagedef.Warning       `json:"warnings,omitempty"`
}

type createPageInput struct {
	Body pageBody
}

type pageOutput struct {
	Body savedPage
}

type getPageInput struct {
	ID string `path:"id"`
}

type getPageOutput struct {
	Body pagedef.PageDefinition
}

type listPagesParams struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"200"`
	Offset int `query:"offset" default:"0" minimum:"0"`
}

type listPagesOutput struct {
	Body struct {
		Items []*pagedef.PageDefinition `json:"items"`
		Total int                       `json:"total"`
	}
}

type updatePageInput struct {
	ID   string `path:"id"`
	Body pageBody
}

type clonePageInput struct {
	ID   string `path:"id"`
	Body struct {
		Name string `json:"name,omitempty"`
	}
}

// RegisterPages registers the editor endpoints.
func RegisterPages(api huma.API, h *PageHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listPages",
		Method:      http.MethodGet,
		Path:        "/v1/pages",
		Summary:     "List page definitions",
		Tags:        []string{"Pages"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "getPage",
		Method:      http.MethodGet,
		Path:        "/v1/pages/{id}",
		Summary:     "Get page definition",
		Tags:        []string{"Pages"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID:   "createPage",
		Method:        http.MethodPost,
		Path:          "/v1/pages",
		Summary:       "Create page definition",
		Tags:          []string{"Pages"},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "updatePage",
		Method:      http.MethodPut,
		Path:        "/v1/pages/{id}",
		Summary:     "Update page definition",
		Tags:        []string{"Pages"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "clonePage",
		Method:        http.MethodPost,
		Path:          "/v1/pages/{id}/clone",
		Summary:       "Clone page definition",
		Tags:          []string{"Pages"},
		DefaultStatus: http.StatusCreated,
	}, h.clone)
}

func (h *PageHandler) list(ctx context.Context, in *listPagesParams) (*listPagesOutput, error) {
	defs, total, err := h.Repo.List(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	out := &listPagesOutput{}
	out.Body.Items = defs
	out.Body.Total = total
	return out, nil
}

func (h *PageHandler) get(ctx context.Context, in *getPageInput) (*getPageOutput, error) {
	def, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	return &getPageOutput{Body: *def}, nil
}

func (h *PageHandler) create(ctx context.Context, in *createPageInput) (*pageOutput, error) {
	def := in.Body.definition()
	pagedef.Normalize(def)
	warnings := pagedef.Validate(def)
	created, err := h.Repo.Create(ctx, def)
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, nil, created)
	events.Emit(ctx, events.Event{Name: events.PageCreated, Time: time.Now(), Data: created, ID: created.ID})
	return &pageOutput{Body: savedPage{Page: created, Warnings: warnings}}, nil
}

func (h *PageHandler) update(ctx context.Context, in *updatePageInput) (*pageOutput, error) {
	old, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	def := in.Body.definition()
	def.ID = in.ID
	def.CreatedAt = old.CreatedAt
	pagedef.Normalize(def)
	warnings := pagedef.Validate(def)
	updated, err := h.Repo.Update(ctx, def)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, old, updated)
	events.Emit(ctx, events.Event{Name: events.PageUpdated, Time: time.Now(), Data: updated, ID: updated.ID})
	return &pageOutput{Body: savedPage{Page: updated, Warnings: warnings}}, nil
}

// clone persists a copy of the stored definition as a new record through the
// create path.
func (h *PageHandler) clone(ctx context.Context, in *clonePageInput) (*pageOutput, error) {
	src, err := h.Repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}
		return nil, err
	}
	cloned, err := h.Repo.Clone(ctx, src, in.Body.Name)
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, nil, cloned)
	events.Emit(ctx, events.Event{Name: events.PageCloned, Time: time.Now(), Data: cloned, ID: cloned.ID})
	return &pageOutput{Body: savedPage{Page: cloned, Warnings: pagedef.Validate(cloned)}}, nil
}
