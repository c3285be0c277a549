package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

func TestWriteCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO bo_audit_logs").
		WithArgs("admin", "create", "p1", "Orders", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := &Recorder{DB: db, Driver: "mysql", TablePrefix: "bo_"}
	err = r.Write(context.Background(), "admin", nil, &pagedef.PageDefinition{ID: "p1", Name: "Orders"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestWriteUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO bo_audit_logs").
		WithArgs("admin", "update", "p1", "Orders", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := &Recorder{DB: db, Driver: "mysql", TablePrefix: "bo_"}
	old := &pagedef.PageDefinition{ID: "p1", Name: "Orders"}
	upd := &pagedef.PageDefinition{ID: "p1", Name: "Orders", Read: "list"}
	if err := r.Write(context.Background(), "admin", old, upd); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestPackUnpackLargePayload(t *testing.T) {
	big := make([]byte, gzipThreshold*2)
	for i := range big {
		big[i] = byte('a' + i%26)
	}
	packed := pack(big)
	raw, ok := packed.([]byte)
	if !ok {
		t.Fatalf("large payload stored as %T, want gzip bytes", packed)
	}
	if !isGzip(raw) {
		t.Fatal("payload not gzip compressed")
	}
	if got := unpack(raw); got != string(big) {
		t.Error("unpack lost data")
	}

	if small := pack([]byte(`{"a":1}`)); small != `{"a":1}` {
		t.Errorf("small payload = %v, want plain string", small)
	}
	if pack(nil) != nil {
		t.Error("nil payload must stay nil")
	}
}

func TestWriteNilRecorder(t *testing.T) {
	var r *Recorder
	if err := r.Write(context.Background(), "admin", nil, nil); err != nil {
		t.Errorf("nil recorder: %v", err)
	}
}
