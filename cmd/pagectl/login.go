package main

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opsdeck/backoffice/sdk/client"
)

func newLoginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Root().Flags().GetString("api-url")
			if username == "" {
				username = prompt("Username")
			}
			password := promptSecret("Password")
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}
			cl := client.NewHTTP(base)
			tok, err := cl.Login(context.Background(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	return cmd
}

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	var s string
	if _, err := fmt.Scanln(&s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func promptSecret(label string) string {
	fmt.Printf("%s: ", label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
