package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSkip(t *testing.T) {
	p := Params{Page: 3, PageSize: 20}
	if got := p.Skip(); got != 40 {
		t.Errorf("Skip() = %d, want 40", got)
	}
	p = Params{Page: 0, PageSize: 20}
	if got := p.Skip(); got != 0 {
		t.Errorf("Skip() with page 0 = %d, want 0", got)
	}
}

func TestSetSortToggle(t *testing.T) {
	p := Defaults("createdAt", "", 20)
	if p.Order != OrderDesc {
		t.Fatalf("default order = %q", p.Order)
	}
	p.SetSort("createdAt")
	if p.Order != OrderAsc {
		t.Errorf("same-field toggle: order = %q, want asc", p.Order)
	}
	p.SetSort("name")
	if p.Sort != "name" || p.Order != OrderDesc {
		t.Errorf("field switch: sort=%q order=%q, want name/desc", p.Sort, p.Order)
	}
}

func TestSetFilterResetsPage(t *testing.T) {
	p := Defaults("", "", 10)
	p.Page = 4
	p.SetFilter("name", "ann")
	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	p.SetFilter("name", "")
	if _, ok := p.Filters["name"]; ok {
		t.Error("empty value must delete the filter")
	}
}

func TestValues(t *testing.T) {
	p := Params{Page: 2, PageSize: 10, Sort: "name", Order: OrderAsc,
		Filters: map[string]string{"status": "active", "skip": "999"}}
	got := p.Values()
	want := map[string]string{
		"skip": "10", "limit": "10", "sort": "name", "order": "asc", "status": "active",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}
