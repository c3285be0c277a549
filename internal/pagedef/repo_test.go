package pagedef

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

func testDef() *PageDefinition {
	return &PageDefinition{
		Name: "Orders",
		Read: "list",
		Schema: []FieldSchema{
			{DataIndex: "name", Title: "Name", FormItemType: ItemInput},
		},
		Grid: []ColumnSchema{{DataIndex: "name", Title: "Name"}},
		APIs: []APIDecl{{Name: "list", Method: "GET", Path: "/api/orders"}},
	}
}

func TestCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO bo_pages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}, TablePrefix: "bo_"}
	got, err := r.Create(context.Background(), testDef())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "" {
		t.Error("id not assigned")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("UPDATE bo_pages SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}, TablePrefix: "bo_"}
	d := testDef()
	d.ID = "missing"
	if _, err := r.Update(context.Background(), d); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClonePreservesContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO bo_pages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}, TablePrefix: "bo_"}
	src := testDef()
	src.ID = "orig"
	got, err := r.Clone(context.Background(), src, "Orders Copy")
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if got.ID == src.ID {
		t.Error("clone kept the source id")
	}
	if got.Name != "Orders Copy" {
		t.Errorf("name = %q", got.Name)
	}
	if len(got.APIs) != 1 || got.Read != "list" {
		t.Errorf("content not carried: %+v", got)
	}
}

func TestRowRoundTrip(t *testing.T) {
	src := testDef()
	src.ID = "p1"
	row, err := encodeRow(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRow(row)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != src.Name || got.Read != src.Read || len(got.Schema) != 1 {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestEncodeRowEmptySlices(t *testing.T) {
	row, err := encodeRow(&PageDefinition{ID: "p", Name: "Empty"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, b := range [][]byte{row.Schema, row.Grid, row.APIs, row.Buttons, row.Roles} {
		if string(b) != "[]" {
			t.Errorf("nil slice stored as %q, want []", b)
		}
	}
}
