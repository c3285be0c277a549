package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/danielgtaylor/huma/v2"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"

	"github.com/opsdeck/backoffice/internal/apibind"
	"github.com/opsdeck/backoffice/internal/pagedef"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func pageRows(t *testing.T, def *pagedef.PageDefinition) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "read_api", "schema_json", "grid_json",
		"apis_json", "buttons_json", "roles_json", "settings_json",
		"created_at", "updated_at",
	}).AddRow(
		def.ID, def.Name, def.Description, def.Read,
		mustJSON(t, def.Schema), mustJSON(t, def.Grid), mustJSON(t, def.APIs),
		mustJSON(t, def.Buttons), mustJSON(t, def.Roles), mustJSON(t, def.Settings),
		now, now,
	)
}

func runtimeHandler(t *testing.T, def *pagedef.PageDefinition, upstream string) *RuntimeHandler {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.ExpectQuery("SELECT .+ FROM .?bo_pages").WillReturnRows(pageRows(t, def))
	return &RuntimeHandler{
		Repo:   &pagedef.Repo{DB: db, Dialect: ormdriver.MySQLDialect{}, TablePrefix: "bo_"},
		Client: apibind.New(upstream),
		Guard:  &apibind.Guard{},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want a status error", err)
	}
	return se.GetStatus()
}

func TestDataUnboundRead(t *testing.T) {
	def := &pagedef.PageDefinition{
		ID:   "p1",
		Read: "missing",
		APIs: []pagedef.APIDecl{{Name: "list", Method: "GET", Path: "/api/items"}},
	}
	h := runtimeHandler(t, def, "http://127.0.0.1:0")
	_, err := h.data(context.Background(), &dataInput{ID: "p1", Page: 1, PageSize: 20})
	if err == nil {
		t.Fatal("read naming an undeclared api must fail, never an empty grid")
	}
	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", got)
	}
}

func TestDataPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("skip"); got != "20" {
			t.Errorf("skip = %q, want 20", got)
		}
		w.Write([]byte(`{"code":0,"data":[{"id":1}],"count":31}`))
	}))
	defer srv.Close()

	def := &pagedef.PageDefinition{
		ID:   "p1",
		Read: "list",
		APIs: []pagedef.APIDecl{{Name: "list", Method: "GET", Path: "/api/items"}},
	}
	h := runtimeHandler(t, def, srv.URL)
	out, err := h.data(context.Background(), &dataInput{ID: "p1", Page: 2, PageSize: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Body.Items) != 1 || out.Body.Total != 31 {
		t.Errorf("items=%d total=%d, want 1/31", len(out.Body.Items), out.Body.Total)
	}
}

func TestDataSupersededRequest(t *testing.T) {
	def := &pagedef.PageDefinition{
		ID:   "p1",
		Read: "list",
		APIs: []pagedef.APIDecl{{Name: "list", Method: "GET", Path: "/api/items"}},
	}
	guard := &apibind.Guard{}
	// A newer request for the same screen starts while this one's upstream
	// call is in flight.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard.Begin("s1")
		w.Write([]byte(`{"code":0,"data":[],"count":0}`))
	}))
	defer srv.Close()

	h := runtimeHandler(t, def, srv.URL)
	h.Guard = guard
	_, err := h.data(context.Background(), &dataInput{ID: "p1", Page: 1, PageSize: 20, Screen: "s1"})
	if err == nil {
		t.Fatal("superseded response must be discarded")
	}
	if got := statusOf(t, err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	def := &pagedef.PageDefinition{
		ID: "p1",
		Schema: []pagedef.FieldSchema{
			{DataIndex: "name", Title: "Name", Rules: []pagedef.Rule{{Required: true}}},
		},
		APIs: []pagedef.APIDecl{{Name: "save", Method: "POST", Path: "/api/items"}},
	}
	h := runtimeHandler(t, def, "http://127.0.0.1:0")
	in := &submitInput{ID: "p1"}
	in.Body.API = "save"
	in.Body.Values = map[string]any{"name": ""}
	_, err := h.submit(context.Background(), in)
	if err == nil {
		t.Fatal("invalid values must block submission")
	}
	var em *huma.ErrorModel
	if !errors.As(err, &em) {
		t.Fatalf("err = %v, want *huma.ErrorModel", err)
	}
	if em.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", em.Status)
	}
	if len(em.Errors) != 1 || em.Errors[0].Location != "body.values.name" {
		t.Errorf("details = %+v, want one at body.values.name", em.Errors)
	}
	if em.Errors[0].Message != "Name is required" {
		t.Errorf("message = %q", em.Errors[0].Message)
	}
}

func TestSubmitTransformsValues(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"code":0,"data":null}`))
	}))
	defer srv.Close()

	def := &pagedef.PageDefinition{
		ID: "p1",
		Schema: []pagedef.FieldSchema{
			{DataIndex: "category", FormItemType: pagedef.ItemCascader},
		},
		APIs: []pagedef.APIDecl{{Name: "save", Method: "POST", Path: "/api/items"}},
	}
	h := runtimeHandler(t, def, srv.URL)
	in := &submitInput{ID: "p1"}
	in.Body.API = "save"
	in.Body.Values = map[string]any{"category": []any{1, 5}}
	if _, err := h.submit(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if got["category"] != float64(5) {
		t.Errorf("category = %v, want deepest element 5", got["category"])
	}
}
