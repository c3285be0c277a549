package rbac

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const testModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

func testEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()
	m, err := model.NewModelFromString(testModel)
	if err != nil {
		t.Fatal(err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery("SELECT r.name, p.path, p.method FROM bo_roles").
		WillReturnRows(sqlmock.NewRows([]string{"name", "path", "method"}).
			AddRow("operator", "/v1/pages/:id/data", "POST"))
	mock.ExpectQuery("SELECT ur.user_id, r.name FROM bo_user_roles").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name"}).
			AddRow(7, "operator"))

	e := testEnforcer(t)
	if err := Load(context.Background(), db, "bo_", e); err != nil {
		t.Fatalf("load: %v", err)
	}
	ok, err := e.Enforce("7", "/v1/pages/abc/data", "POST")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("granted route denied")
	}
	ok, _ = e.Enforce("7", "/v1/pages", "POST")
	if ok {
		t.Error("ungranted route allowed")
	}
}

func TestPageAllowed(t *testing.T) {
	if !PageAllowed(nil, []string{"operator"}) {
		t.Error("empty page role set must be open")
	}
	if !PageAllowed([]string{"admin", "operator"}, []string{"operator"}) {
		t.Error("matching role denied")
	}
	if PageAllowed([]string{"admin"}, []string{"operator"}) {
		t.Error("non-matching role allowed")
	}
}
