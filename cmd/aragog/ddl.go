package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xaviermathew/Aragog/internal/storage"
)

type ddlFlags struct {
	schemaFlags
	dialect string
	table   string
}

func newDDLCmd(root *rootFlags) *cobra.Command {
	f := &ddlFlags{}
	cmd := &cobra.Command{
		Use:   "ddl <dataset>",
		Short: "Print a CREATE TABLE statement for a stored schema",
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
			dialect := f.dialect
			if dialect == "" {
				dialect = job.Storage.Kind
			}
			if dialect == "" {
				return fmt.Errorf("no --dialect given and storage.kind is not configured (one of %v)", storage.Kinds())
			}
			table := f.table
			if table == "" {
				table = tableFQN(job.Storage, args[0])
			}
			stmt, err := storage.BuildCreateTable(dialect, table, s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), stmt)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.dialect, "dialect", "", "SQL dialect (defaults to storage.kind)")
	cmd.Flags().StringVar(&f.table, "table", "", "table name (defaults to the normalized dataset name)")
	return cmd
}
