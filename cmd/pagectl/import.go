package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsdeck/backoffice/internal/snapshot"
)

func newImportCmd() *cobra.Command {
	var (
		in     string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import page definitions from a YAML export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			var doc snapshot.Document
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d pages in %s\n", len(doc.Pages), in)
				return nil
			}
			cl, err := apiClient(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			var created, updated int
			for _, p := range doc.Pages {
				if p.ID == "" {
					if _, err := cl.Create(ctx, p); err != nil {
						return fmt.Errorf("create %s: %w", p.Name, err)
					}
					created++
					continue
				}
				if _, err := cl.Get(ctx, p.ID); err != nil {
					if _, err := cl.Create(ctx, p); err != nil {
						return fmt.Errorf("create %s: %w", p.Name, err)
					}
					created++
					continue
				}
				if _, err := cl.Update(ctx, p); err != nil {
					return fmt.Errorf("update %s: %w", p.ID, err)
				}
				updated++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported: %d created, %d updated\n", created, updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "file", "", "input file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse only, do not write")
	return cmd
}
