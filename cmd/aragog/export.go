package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/xaviermathew/Aragog/internal/schema/jsonschema"
)

func newExportCmd(root *rootFlags) *cobra.Command {
	f := &schemaFlags{}
	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Print a stored schema as a JSON Schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := jobForSchema(root, f.file)
			if err != nil {
				return err
			}
			s, err := loadSchema(cmd.Context(), job, args[0], f.file)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(jsonschema.Export(args[0], s))
		},
	}
	f.register(cmd)
	return cmd
}
