package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/snapshot"
)

func newValidateCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate page definitions in a YAML export",
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
			var count int
			for _, p := range doc.Pages {
				pagedef.Normalize(p)
				for _, w := range pagedef.Validate(p) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s\n", p.Name, w.Location, w.Message)
					count++
				}
			}
			if count > 0 {
				return fmt.Errorf("%d warnings in %d pages", count, len(doc.Pages))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages OK\n", len(doc.Pages))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "file", "", "input file")
	return cmd
}
