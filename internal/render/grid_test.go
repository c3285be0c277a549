package render

import (
	"testing"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

func TestBuildGrid(t *testing.T) {
	def := &pagedef.PageDefinition{
		Read: "list",
		Grid: []pagedef.ColumnSchema{
			{DataIndex: "name", Title: "Name", Width: 120},
			{DataIndex: "status", Title: "Status", ValueEnum: map[string]string{"1": "Active"}},
		},
	}
	def.Settings.Grid.Paginated = true
	def.Settings.Grid.PageSize = 50
	def.Settings.Grid.DefaultSort = "createdAt"

	plan := BuildGrid(def)
	if plan.ReadAPI != "list" || !plan.Paginated {
		t.Errorf("plan = %+v", plan)
	}
	if len(plan.Columns) != 2 || plan.Columns[0].Width != 120 {
		t.Errorf("columns = %+v", plan.Columns)
	}
	if plan.Initial.Page != 1 || plan.Initial.PageSize != 50 {
		t.Errorf("initial = %+v", plan.Initial)
	}
	if plan.Initial.Sort != "createdAt" || plan.Initial.Order != "desc" {
		t.Errorf("initial sort = %s %s", plan.Initial.Sort, plan.Initial.Order)
	}
}
