package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsdeck/backoffice/internal/snapshot"
)

func newExportCmd() *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all page definitions to YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", out)
			}
			cl, err := apiClient(cmd)
			if err != nil {
				return err
			}
			pages, _, err := cl.List(context.Background(), 1000, 0)
			if err != nil {
				return err
			}
			doc := snapshot.Document{Version: "1.0", TakenAt: time.Now().UTC(), Pages: pages}
			data, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", len(pages), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "pages.yaml", "output file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite without confirmation")
	return cmd
}
