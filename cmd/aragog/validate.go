package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/dataset"
	"github.com/xaviermathew/Aragog/internal/partition"
	"github.com/xaviermathew/Aragog/internal/schema/jsonschema"
)

type validateFlags struct {
	schemaFlags
	records   string
	maxErrors int
}

func newValidateCmd(root *rootFlags) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint the job file, optionally checking dataset records against a stored schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, root, f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.records, "records", "", "dataset whose records are validated against its schema")
	cmd.Flags().IntVar(&f.maxErrors, "max-errors", 20, "stop printing violations after this many")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootFlags, f *validateFlags) error {
	out := cmd.OutOrStdout()
	job, err := config.Load(root.config)
	if err != nil {
		return err
	}
	issues := config.ValidateJob(job)
	for _, is := range issues {
		fmt.Fprintln(out, is.Error())
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("job %s has %d issue(s)", root.config, len(issuesAsErrors(issues, config.SeverityError)))
	}
	if len(issues) == 0 {
		fmt.Fprintf(out, "job %s ok\n", root.config)
	}
	if f.records == "" {
		return nil
	}

	ctx := cmd.Context()
	ds, ok := job.Dataset(f.records)
	if !ok {
		return fmt.Errorf("unknown dataset %q", f.records)
	}
	s, err := loadSchema(ctx, job, ds.Name, f.file)
	if err != nil {
		return err
	}
	v, err := jsonschema.Compile(jsonschema.Export(ds.Name, s))
	if err != nil {
		return err
	}
	stream, err := dataset.Open(ctx, ds)
	if err != nil {
		return err
	}
	defer stream.Close()

	var seen, bad int64
	it := partition.Split(stream, job.Inference.PartitionSize, stream.Transforms)
	for {
		p, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		for _, rec := range p.Records {
			seen++
			if err := v.Validate(rec); err != nil {
				bad++
				if bad <= int64(f.maxErrors) {
					fmt.Fprintf(out, "record %d: %v\n", seen, err)
				}
			}
		}
	}
	fmt.Fprintf(out, "%s: %s of %s records valid\n", ds.Name, humanize.Comma(seen-bad), humanize.Comma(seen))
	if bad > 0 {
		return fmt.Errorf("dataset %s: %d invalid record(s)", ds.Name, bad)
	}
	return nil
}
