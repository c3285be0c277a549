package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage console users"}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		dsn, driver, tablePrefix string
		username, password, role string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a console user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--db is required")
			}
			if username == "" || role == "" {
				return fmt.Errorf("--username and --role are required")
			}
			if password == "" {
				password = promptSecret("Password")
				if password == "" {
					return fmt.Errorf("password is required")
				}
			}
			if driver == "" {
				driver = detectDriver(dsn)
			}
			db, err := sql.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
			if err != nil {
				return err
			}
			table := tablePrefix + "users"
			var q string
			switch driver {
			case "postgres":
				q = fmt.Sprintf(`INSERT INTO %s (username, password_hash, role) VALUES ($1, $2, $3)`, table)
			default:
				q = fmt.Sprintf(`INSERT INTO %s (username, password_hash, role) VALUES (?, ?, ?)`, table)
			}
			if _, err := db.ExecContext(context.Background(), q, username, string(hash), role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", username, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "db", "", "database DSN")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (mysql|postgres)")
	cmd.Flags().StringVar(&tablePrefix, "table-prefix", "bo_", "table name prefix")
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "operator", "role")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("username")
	return cmd
}

func detectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "mysql"
}
