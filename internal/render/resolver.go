package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// ErrPageNotFound is returned when a page identifier resolves to nothing.
// Callers surface it and render nothing further.
var ErrPageNotFound = errors.New("page not found")

// Mode selects how a page is being opened.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeView   Mode = "view"
)

// ParseMode validates a mode string, defaulting to view.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCreate, ModeEdit, ModeView:
		return Mode(s), nil
	case "":
		return ModeView, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Getter loads a page definition by id.
type Getter interface {
	Get(ctx context.Context, id string) (*pagedef.PageDefinition, error)
}

// TemplateRegistry holds the names of layout templates a client can render.
// When a page's layoutCtrl names a registered template the resolver
// delegates the whole layout to it instead of producing the default
// form/grid combination.
type TemplateRegistry struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewTemplateRegistry returns an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{names: map[string]struct{}{}}
}

// Register adds a template name.
func (r *TemplateRegistry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = struct{}{}
}

// Has reports whether name is registered.
func (r *TemplateRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Plan is the resolved rendering strategy for one page. Either Template
// names a registered layout template, or Form and Grid carry the default
// plans.
type Plan struct {
	Page     *pagedef.PageDefinition `json:"page"`
	Mode     Mode                    `json:"mode"`
	RecordID string                  `json:"recordId,omitempty"`
	Template string                  `json:"template,omitempty"`
	Form     *FormPlan               `json:"form,omitempty"`
	Grid     *GridPlan               `json:"grid,omitempty"`
	Warnings []pagedef.Warning       `json:"warnings,omitempty"`
}

// Resolver selects a rendering strategy for a fetched page definition. It is
// pure selection logic over the fetched data; the fetch is its only side
// effect.
type Resolver struct {
	Pages     Getter
	Templates *TemplateRegistry
}

// Resolve fetches the definition for pageID and decides what to mount.
func (r *Resolver) Resolve(ctx context.Context, pageID string, mode Mode, recordID string) (*Plan, error) {
	def, err := r.Pages.Get(ctx, pageID)
	if err != nil {
		if errors.Is(err, pagedef.ErrNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	plan := &Plan{
		Page:     def,
		Mode:     mode,
		RecordID: recordID,
		Warnings: pagedef.Validate(def),
	}
	if ctrl := def.Settings.Schema.LayoutCtrl; ctrl != "" && r.Templates.Has(ctrl) {
		plan.Template = ctrl
		return plan, nil
	}
	plan.Form = BuildForm(def)
	plan.Grid = BuildGrid(def)
	return plan, nil
}
