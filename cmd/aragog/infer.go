package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/metrics"
	"github.com/xaviermathew/Aragog/internal/probe"
	"github.com/xaviermathew/Aragog/internal/storage"
)

type inferFlags struct {
	outDir string
	noSave bool
}

func newInferCmd(root *rootFlags) *cobra.Command {
	f := &inferFlags{}
	cmd := &cobra.Command{
		Use:   "infer [dataset...]",
		Short: "Infer and store the schema of each dataset",
		Long: `Reads every dataset of the job (or only the named ones) in partitions,
infers its schema and saves it to the configured registry. With
storage.create_tables a table shaped after each schema is created as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, root, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "also write <dataset>.json schema files to this directory")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "skip the schema registry")
	return cmd
}

func runInfer(cmd *cobra.Command, root *rootFlags, f *inferFlags, names []string) error {
	ctx := cmd.Context()
	job, issues, err := loadJob(root)
	if err != nil {
		return err
	}
	env, err := setupRuntime(ctx, job, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.close()
	for _, is := range issues {
		env.log.Warn("job lint", "path", is.Path, "msg", is.Message)
	}

	datasets, err := selectDatasets(job, names)
	if err != nil {
		return err
	}

	var repo storage.Repository
	if job.Storage.Kind != "" && !f.noSave {
		if repo, err = storage.New(ctx, storageConfig(job.Storage)); err != nil {
			return err
		}
		defer repo.Close()
	}
	if f.outDir != "" {
		if err := os.MkdirAll(f.outDir, 0o755); err != nil {
			return err
		}
	}

	runner := probe.FromConfig(job.Inference, probe.WithCache(env.cache), probe.WithLogger(env.log))
	out := cmd.OutOrStdout()
	for _, ds := range datasets {
		res, err := runner.RunDataset(ctx, ds, job.Inference.PartitionSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s records, %d fields, %d partitions (%d cached) in %s\n",
			ds.Name, humanize.Comma(res.Schema.Records), len(res.Schema.Fields),
			res.Partitions, res.Cached, res.Duration.Round(time.Millisecond))
		if res.Skipped > 0 {
			fmt.Fprintf(out, "%s: %s malformed rows skipped\n", ds.Name, humanize.Comma(int64(res.Skipped)))
		}

		if f.outDir != "" {
			b, err := json.MarshalIndent(res.Schema, "", "  ")
			if err != nil {
				return err
			}
			path := filepath.Join(f.outDir, ds.Name+".json")
			if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
				return err
			}
		}
		if repo == nil {
			continue
		}

		t0 := time.Now()
		err = repo.SaveSchema(ctx, storage.SchemaRecord{
			Name:        ds.Name,
			Fingerprint: res.Fingerprint,
			Schema:      res.Schema,
			UpdatedAt:   time.Now().UTC(),
		})
		if err == nil && job.Storage.CreateTables && len(res.Schema.Fields) > 0 {
			err = storage.EnsureTable(ctx, repo, job.Storage.Kind, tableFQN(job.Storage, ds.Name), res.Schema)
		}
		metrics.RecordStep(ds.Name, "save", err, time.Since(t0))
		if err != nil {
			return fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		env.log.Info("schema saved", "dataset", ds.Name, "backend", job.Storage.Kind, "fingerprint", res.Fingerprint)
	}
	return nil
}

// selectDatasets returns the named datasets in argument order, or all.
func selectDatasets(job config.Job, names []string) ([]config.Dataset, error) {
	if len(names) == 0 {
		return job.Datasets, nil
	}
	out := make([]config.Dataset, 0, len(names))
	for _, n := range names {
		ds, ok := job.Dataset(n)
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q", n)
		}
		out = append(out, ds)
	}
	return out, nil
}

// tableFQN is the table created for a dataset: its normalized name,
// qualified by storage.schema when set.
func tableFQN(s config.Storage, dataset string) string {
	name := ddl.NormalizeIdent(dataset)
	if s.Schema == "" {
		return name
	}
	return s.Schema + "." + name
}
