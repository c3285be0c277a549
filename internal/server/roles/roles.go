package roles

import (
	"context"
	"database/sql"
	"fmt"
)

// OfUser returns role names for the given user. The user parameter may be
// either a numeric ID or a username.
func OfUser(ctx context.Context, db *sql.DB, driver, prefix, user string) ([]string, error) {
	if db == nil {
		return nil, nil
	}
	isID := true
	for _, c := range user {
		if c < '0' || c > '9' {
			isID = false
			break
		}
	}
	ur := prefix + "user_roles"
	users := prefix + "users"
	rolesTbl := prefix + "roles"
	cond := "u.username"
	if isID {
		cond = "ur.user_id"
	}
	ph := "$1"
	if driver == "mysql" {
		ph = "?"
	}
	q := fmt.Sprintf("SELECT r.name FROM %s ur JOIN %s u ON u.id = ur.user_id JOIN %s r ON r.id = ur.role_id WHERE %s = %s ORDER BY r.name", ur, users, rolesTbl, cond, ph)
	rows, err := db.QueryContext(ctx, q, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}
