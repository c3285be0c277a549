package apibind

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

func TestResolve(t *testing.T) {
	def := &pagedef.PageDefinition{
		ID:   "p1",
		Read: "list",
		APIs: []pagedef.APIDecl{
			{Name: "list", Method: "GET", Path: "/api/items"},
			{Name: "approve", Method: "POST", Path: "/api/items/{id}/approve"},
		},
	}
	decl, err := ResolveRead(def)
	if err != nil {
		t.Fatal(err)
	}
	if decl.Path != "/api/items" {
		t.Errorf("path = %q", decl.Path)
	}

	if _, err := Resolve(def, "delete"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("undeclared name: err = %v, want ErrBindingNotFound", err)
	}

	def.Read = ""
	if _, err := ResolveRead(def); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("empty read: err = %v, want ErrBindingNotFound", err)
	}
}

func TestExpandPath(t *testing.T) {
	path, rest, err := ExpandPath("/api/items/{id}/approve", map[string]string{"id": "42", "reason": "ok"})
	if err != nil {
		t.Fatal(err)
	}
	if path != "/api/items/42/approve" {
		t.Errorf("path = %q", path)
	}
	if diff := cmp.Diff(map[string]string{"reason": "ok"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := ExpandPath("/api/items/{id}", nil); err == nil {
		t.Error("missing parameter must fail")
	}
}
