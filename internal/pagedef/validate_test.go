package pagedef

import "testing"

func TestValidateReadMismatch(t *testing.T) {
	d := &PageDefinition{
		ID:   "p1",
		Read: "list",
		APIs: []APIDecl{{Name: "create", Method: "POST", Path: "/api/items"}},
	}
	ws := Validate(d)
	if len(ws) != 1 || ws[0].Location != "read" {
		t.Fatalf("warnings = %+v, want one at read", ws)
	}

	d.APIs = append(d.APIs, APIDecl{Name: "list", Method: "GET", Path: "/api/items"})
	if ws := Validate(d); len(ws) != 0 {
		t.Errorf("unexpected warnings: %+v", ws)
	}
}

func TestValidateButtonRef(t *testing.T) {
	d := &PageDefinition{
		Buttons: []ButtonDecl{
			{Label: "Approve", APIName: "approve"},
			{Label: "Noop"},
		},
	}
	ws := Validate(d)
	if len(ws) != 1 || ws[0].Location != "buttons[0]" {
		t.Fatalf("warnings = %+v", ws)
	}
}

func TestValidateSchemaIndexes(t *testing.T) {
	d := &PageDefinition{
		Schema: []FieldSchema{
			{DataIndex: "name"},
			{DataIndex: ""},
			{DataIndex: "name"},
		},
	}
	ws := Validate(d)
	if len(ws) != 2 {
		t.Fatalf("warnings = %+v, want 2", ws)
	}
	if ws[0].Location != "schema[1]" || ws[1].Location != "schema[2]" {
		t.Errorf("locations = %s, %s", ws[0].Location, ws[1].Location)
	}
}

func TestNormalize(t *testing.T) {
	d := &PageDefinition{
		Schema: []FieldSchema{{DataIndex: "created_at"}, {DataIndex: "UserName"}},
		Grid:   []ColumnSchema{{DataIndex: "order_no"}},
		APIs:   []APIDecl{{Name: "list", Method: "get"}},
	}
	Normalize(d)
	if d.Schema[0].DataIndex != "createdAt" || d.Schema[1].DataIndex != "userName" {
		t.Errorf("schema indexes = %q, %q", d.Schema[0].DataIndex, d.Schema[1].DataIndex)
	}
	if d.Grid[0].DataIndex != "orderNo" {
		t.Errorf("grid index = %q", d.Grid[0].DataIndex)
	}
	if d.APIs[0].Method != "GET" {
		t.Errorf("method = %q", d.APIs[0].Method)
	}
}
