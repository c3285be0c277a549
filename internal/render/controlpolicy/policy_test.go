package controlpolicy

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func boolp(b bool) *bool { return &b }

func TestResolveFirstMatchWins(t *testing.T) {
	pol := &Policy{Rules: []Rule{
		{ID: "dates", When: RuleWhen{NameRegex: `(At|Date)$`}, Control: "date"},
		{ID: "enums", When: RuleWhen{HasOptions: boolp(true)}, Control: "select"},
		{ID: "trees", When: RuleWhen{Hierarchical: boolp(true)}, Control: "tree-select"},
	}}

	cases := []struct {
		ctx  FieldCtx
		want string
	}{
		{FieldCtx{DataIndex: "createdAt"}, "date"},
		{FieldCtx{DataIndex: "createdAt", HasOptions: true}, "date"},
		{FieldCtx{DataIndex: "status", HasOptions: true}, "select"},
		{FieldCtx{DataIndex: "category", Hierarchical: true}, "tree-select"},
		{FieldCtx{DataIndex: "note"}, DefaultControl},
	}
	for _, c := range cases {
		if got := pol.Resolve(c.ctx); got != c.want {
			t.Errorf("Resolve(%+v) = %q, want %q", c.ctx, got, c.want)
		}
	}
}

func TestResolveBrokenRegex(t *testing.T) {
	pol := &Policy{Rules: []Rule{{When: RuleWhen{NameRegex: `([`}, Control: "date"}}}
	if got := pol.Resolve(FieldCtx{DataIndex: "createdAt"}); got != DefaultControl {
		t.Errorf("broken regex resolved to %q, want default", got)
	}
}

func TestStoreLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	data := []byte("version: 1\nrules:\n  - id: enums\n    when:\n      has_options: true\n    control: SELECT\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path, slog.Default())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	got := s.Policy().Resolve(FieldCtx{DataIndex: "status", HasOptions: true})
	if got != "select" {
		t.Errorf("resolve = %q, want select", got)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if got := s.Policy().Resolve(FieldCtx{DataIndex: "x"}); got != DefaultControl {
		t.Errorf("nil store resolved to %q", got)
	}
}
