package rbac

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/casbin/casbin/v2"
)

// Load fills the Casbin enforcer with policies and groupings from the
// database: role route grants plus per-page role assignments.
func Load(ctx context.Context, db *sql.DB, prefix string, e *casbin.Enforcer) error {
	if db == nil || e == nil {
		return nil
	}
	roles := prefix + "roles"
	policies := prefix + "role_policies"
	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		`SELECT r.name, p.path, p.method FROM %s r JOIN %s p ON r.id=p.role_id`, roles, policies))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var role, path, method string
		if err := rows.Scan(&role, &path, &method); err != nil {
			return err
		}
		e.AddPolicy(role, path, method)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	userRoles := prefix + "user_roles"
	rows2, err := db.QueryContext(ctx, fmt.Sprintf(
		`SELECT ur.user_id, r.name FROM %s ur JOIN %s r ON ur.role_id=r.id`, userRoles, roles))
	if err != nil {
		return err
	}
	defer rows2.Close()
	for rows2.Next() {
		var uid int64
		var role string
		if err := rows2.Scan(&uid, &role); err != nil {
			return err
		}
		e.AddGroupingPolicy(fmt.Sprint(uid), role)
	}
	return rows2.Err()
}

// PageAllowed reports whether any of the subject's roles is in the page's
// declared role set. An empty role set means the page is open to every
// authenticated user.
func PageAllowed(pageRoles, userRoles []string) bool {
	if len(pageRoles) == 0 {
		return true
	}
	allowed := make(map[string]struct{}, len(pageRoles))
	for _, r := range pageRoles {
		allowed[r] = struct{}{}
	}
	for _, r := range userRoles {
		if _, ok := allowed[r]; ok {
			return true
		}
	}
	return false
}
