package audit

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"io"
	"time"
)

// Record is one stored change with its before/after documents decompressed.
type Record struct {
	ID        int64
	Actor     string
	Action    string
	PageID    string
	PageName  string
	Before    string
	After     string
	CreatedAt time.Time
}

// Get retrieves a single audit record by id.
func (r *Recorder) Get(ctx context.Context, id int64) (Record, error) {
	if r == nil || r.DB == nil {
		return Record{}, sql.ErrConnDone
	}
	q := "SELECT id, actor, action, page_id, page_name, before_json, after_json, created_at FROM " + r.table() + " WHERE id=?"
	if r.Driver == "postgres" {
		q = "SELECT id, actor, action, page_id, page_name, before_json, after_json, created_at FROM " + r.table() + " WHERE id=$1"
	}
	var rec Record
	var before, after []byte
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Actor, &rec.Action, &rec.PageID, &rec.PageName, &before, &after, &rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.Before = unpack(before)
	rec.After = unpack(after)
	return rec, nil
}

func unpack(b []byte) string {
	if !isGzip(b) {
		return string(b)
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return string(b)
	}
	defer zr.Close()
	d, err := io.ReadAll(zr)
	if err != nil {
		return string(b)
	}
	return string(d)
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}
