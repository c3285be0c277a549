package render

import (
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/query"
)

// GridColumn is one rendered table column.
type GridColumn struct {
	Title     string            `json:"title"`
	DataIndex string            `json:"dataIndex"`
	Width     int               `json:"width,omitempty"`
	ValueType string            `json:"valueType,omitempty"`
	ValueEnum map[string]string `json:"valueEnum,omitempty"`
}

// GridPlan is the renderable table for one page: ordered columns, the name
// of the read binding and the initial query state.
type GridPlan struct {
	Columns   []GridColumn `json:"columns"`
	ReadAPI   string       `json:"readApi,omitempty"`
	Paginated bool         `json:"paginated"`
	Initial   query.Params `json:"initial"`
}

// BuildGrid interprets the column schema sequence of a definition. The
// initial query state carries the page's declared default sort field and
// direction.
func BuildGrid(d *pagedef.PageDefinition) *GridPlan {
	plan := &GridPlan{
		ReadAPI:   d.Read,
		Paginated: d.Settings.Grid.Paginated,
		Initial: query.Defaults(
			d.Settings.Grid.DefaultSort,
			d.Settings.Grid.DefaultOrder,
			d.Settings.Grid.PageSize,
		),
	}
	for _, c := range d.Grid {
		plan.Columns = append(plan.Columns, GridColumn{
			Title:     c.Title,
			DataIndex: c.DataIndex,
			Width:     c.Width,
			ValueType: c.ValueType,
			ValueEnum: c.ValueEnum,
		})
	}
	return plan
}
