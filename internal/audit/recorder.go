package audit

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// payloads past this size are stored gzip-compressed
const gzipThreshold = 4096

// Recorder writes page-definition change logs to the database.
type Recorder struct {
	DB          *sql.DB
	Driver      string // mysql or postgres
	TablePrefix string
}

func (r *Recorder) table() string {
	if r.TablePrefix == "" {
		return "bo_audit_logs"
	}
	return r.TablePrefix + "audit_logs"
}

// Write records a single page-definition change. A nil old marks a create,
// matching the editor's create/clone path; updates carry both sides.
func (r *Recorder) Write(ctx context.Context, actor string, old, new *pagedef.PageDefinition) error {
	if r == nil || r.DB == nil {
		return nil
	}
	action := "update"
	if old == nil && new != nil {
		action = "create"
	}
	var before, after []byte
	var err error
	if old != nil {
		before, err = json.Marshal(old)
		if err != nil {
			return err
		}
	}
	if new != nil {
		after, err = json.Marshal(new)
		if err != nil {
			return err
		}
	}
	pageID := ""
	pageName := ""
	if new != nil {
		pageID, pageName = new.ID, new.Name
	} else if old != nil {
		pageID, pageName = old.ID, old.Name
	}
	q := "INSERT INTO " + r.table() + "(actor, action, page_id, page_name, before_json, after_json) VALUES (?,?,?,?,?,?)"
	if r.Driver == "postgres" {
		q = "INSERT INTO " + r.table() + "(actor, action, page_id, page_name, before_json, after_json) VALUES ($1,$2,$3,$4,$5,$6)"
	}
	_, err = r.DB.ExecContext(ctx, q, actor, action, pageID, pageName, pack(before), pack(after))
	return err
}

func pack(b []byte) any {
	if b == nil {
		return nil
	}
	if len(b) < gzipThreshold {
		return string(b)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(b)
	zw.Close()
	return buf.Bytes()
}
