package main

import (
	"github.com/spf13/cobra"

	// Register every storage backend and DDL builder.
	_ "github.com/xaviermathew/Aragog/internal/storage/all"
)

type rootFlags struct {
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "aragog",
		Short:         "Infer schemas of tabular and JSON datasets",
		Long:          "aragog reads datasets in partitions, infers a typed schema for each field and stores it in a schema registry.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "aragog.yaml", "job file (YAML or JSON)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newInferCmd(f),
		newDescribeCmd(f),
		newDDLCmd(f),
		newExportCmd(f),
		newValidateCmd(f),
	)
	return root
}
