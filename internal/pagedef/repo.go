package pagedef

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no definition exists for the requested id.
var ErrNotFound = errors.New("page definition not found")

// Repo persists page definitions. Structured parts (schema, grid, apis,
// buttons, roles, settings) are stored as JSON documents.
type Repo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *Repo) table() string {
	if r.TablePrefix == "" {
		return "bo_pages"
	}
	return r.TablePrefix + "pages"
}

type pageRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	ReadAPI     string    `db:"read_api"`
	Schema      []byte    `db:"schema_json"`
	Grid        []byte    `db:"grid_json"`
	APIs        []byte    `db:"apis_json"`
	Buttons     []byte    `db:"buttons_json"`
	Roles       []byte    `db:"roles_json"`
	Settings    []byte    `db:"settings_json"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *Repo) isPostgres() bool {
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		return true
	}
	return false
}

// Get returns the definition with the given id.
func (r *Repo) Get(ctx context.Context, id string) (*PageDefinition, error) {
	q := query.New(r.DB, r.table(), r.Dialect).
		Select("id", "name", "description", "read_api", "schema_json", "grid_json",
			"apis_json", "buttons_json", "roles_json", "settings_json",
			"created_at", "updated_at").
		Where("id", id).
		WithContext(ctx)
	var row pageRow
	if err := q.First(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRow(&row)
}

// Count returns the number of stored definitions.
func (r *Repo) Count(ctx context.Context) (int, error) {
	cq := query.New(r.DB, r.table(), r.Dialect).
		SelectRaw("COUNT(*) AS cnt").
		WithContext(ctx)
	var cnt struct{ Cnt int }
	if err := cq.First(&cnt); err != nil {
		return 0, err
	}
	return cnt.Cnt, nil
}

// List returns a page of definitions ordered by name, and the total count.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]*PageDefinition, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	q := query.New(r.DB, r.table(), r.Dialect).
		Select("id", "name", "description", "read_api", "schema_json", "grid_json",
			"apis_json", "buttons_json", "roles_json", "settings_json",
			"created_at", "updated_at").
		OrderBy("name", "asc").
		Limit(limit).
		Offset(offset).
		WithContext(ctx)
	var rows []pageRow
	if err := q.Get(&rows); err != nil {
		return nil, 0, err
	}
	defs := make([]*PageDefinition, 0, len(rows))
	for i := range rows {
		d, err := decodeRow(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		defs = append(defs, d)
	}
	return defs, total, nil
}

// Create inserts a new definition and returns it with the server-assigned id
// and timestamps set.
func (r *Repo) Create(ctx context.Context, d *PageDefinition) (*PageDefinition, error) {
	cp := *d
	cp.ID = uuid.NewString()
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	row, err := encodeRow(&cp)
	if err != nil {
		return nil, err
	}
	cols := "(id, name, description, read_api, schema_json, grid_json, apis_json, buttons_json, roles_json, settings_json, created_at, updated_at)"
	var stmt string
	if r.isPostgres() {
		stmt = fmt.Sprintf("INSERT INTO %s %s VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)", r.table(), cols)
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s %s VALUES (?,?,?,?,?,?,?,?,?,?,?,?)", r.table(), cols)
	}
	if _, err := r.DB.ExecContext(ctx, stmt,
		row.ID, row.Name, row.Description, row.ReadAPI,
		row.Schema, row.Grid, row.APIs, row.Buttons, row.Roles, row.Settings,
		row.CreatedAt, row.UpdatedAt); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Update persists the definition in place. ErrNotFound is returned when the
// id does not exist.
func (r *Repo) Update(ctx context.Context, d *PageDefinition) (*PageDefinition, error) {
	cp := *d
	cp.UpdatedAt = time.Now().UTC()
	row, err := encodeRow(&cp)
	if err != nil {
		return nil, err
	}
	var stmt string
	if r.isPostgres() {
		stmt = fmt.Sprintf("UPDATE %s SET name=$1, description=$2, read_api=$3, schema_json=$4, grid_json=$5, apis_json=$6, buttons_json=$7, roles_json=$8, settings_json=$9, updated_at=$10 WHERE id=$11", r.table())
	} else {
		stmt = fmt.Sprintf("UPDATE %s SET name=?, description=?, read_api=?, schema_json=?, grid_json=?, apis_json=?, buttons_json=?, roles_json=?, settings_json=?, updated_at=? WHERE id=?", r.table())
	}
	res, err := r.DB.ExecContext(ctx, stmt,
		row.Name, row.Description, row.ReadAPI,
		row.Schema, row.Grid, row.APIs, row.Buttons, row.Roles, row.Settings,
		row.UpdatedAt, row.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return &cp, nil
}

// Clone persists a copy of the definition as a new record via the create
// path. The copy carries the current in-memory state of src, not what is
// stored under its id.
func (r *Repo) Clone(ctx context.Context, src *PageDefinition, name string) (*PageDefinition, error) {
	cp := *src
	if name != "" {
		cp.Name = name
	}
	return r.Create(ctx, &cp)
}

// ListAll returns every definition, for snapshot export.
func (r *Repo) ListAll(ctx context.Context) ([]*PageDefinition, error) {
	defs, _, err := r.List(ctx, 10000, 0)
	return defs, err
}

func encodeRow(d *PageDefinition) (*pageRow, error) {
	row := pageRow{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ReadAPI:     d.Read,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	var err error
	if row.Schema, err = marshalOr(d.Schema, "[]"); err != nil {
		return nil, err
	}
	if row.Grid, err = marshalOr(d.Grid, "[]"); err != nil {
		return nil, err
	}
	if row.APIs, err = marshalOr(d.APIs, "[]"); err != nil {
		return nil, err
	}
	if row.Buttons, err = marshalOr(d.Buttons, "[]"); err != nil {
		return nil, err
	}
	if row.Roles, err = marshalOr(d.Roles, "[]"); err != nil {
		return nil, err
	}
	if row.Settings, err = json.Marshal(d.Settings); err != nil {
		return nil, err
	}
	return &row, nil
}

func marshalOr(v any, empty string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte(empty), nil
	}
	return b, nil
}

func decodeRow(row *pageRow) (*PageDefinition, error) {
	d := &PageDefinition{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Read:        row.ReadAPI,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, part := range []struct {
		raw []byte
		dst any
	}{
		{row.Schema, &d.Schema},
		{row.Grid, &d.Grid},
		{row.APIs, &d.APIs},
		{row.Buttons, &d.Buttons},
		{row.Roles, &d.Roles},
		{row.Settings, &d.Settings},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return nil, fmt.Errorf("decode page %s: %w", row.ID, err)
		}
	}
	return d, nil
}
