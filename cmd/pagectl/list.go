package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/sdk/client"
)

func newListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List page definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := apiClient(cmd)
			if err != nil {
				return err
			}
			pages, total, err := cl.List(context.Background(), limit, offset)
			if err != nil {
				return err
			}
			if err := printPages(cmd, pages); err != nil {
				return err
			}
			format, _ := cmd.Root().Flags().GetString("output")
			if format != "json" {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(pages), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum pages to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "list offset")
	return cmd
}

func apiClient(cmd *cobra.Command) (client.Client, error) {
	base, _ := cmd.Root().Flags().GetString("api-url")
	tok, _ := cmd.Root().Flags().GetString("token")
	if tok == "" {
		tok = os.Getenv("PAGECTL_TOKEN")
	}
	if tok == "" {
		return nil, fmt.Errorf("--token or PAGECTL_TOKEN is required")
	}
	return client.NewHTTP(base, client.WithToken(tok)), nil
}

func printPages(cmd *cobra.Command, pages []*pagedef.PageDefinition) error {
	format, _ := cmd.Root().Flags().GetString("output")
	if format == "json" {
		b, err := json.MarshalIndent(pages, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"ID", "Name", "Fields", "Columns", "APIs"})
	for _, p := range pages {
		tw.Append([]string{p.ID, p.Name, fmt.Sprint(len(p.Schema)), fmt.Sprint(len(p.Grid)), fmt.Sprint(len(p.APIs))})
	}
	tw.Render()
	return nil
}
