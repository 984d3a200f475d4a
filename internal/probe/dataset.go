package probe

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/dataset"
	"github.com/xaviermathew/Aragog/internal/metrics"
	"github.com/xaviermathew/Aragog/internal/partition"
)

// RunDataset opens ds, splits it into partitions of partitionSize with the
// dataset's transforms applied, and runs inference over them.
func (r *Runner) RunDataset(ctx context.Context, ds config.Dataset, partitionSize int, opts ...dataset.Option) (*Result, error) {
	t0 := time.Now()
	stream, err := dataset.Open(ctx, ds, append([]dataset.Option{dataset.WithLogger(r.log)}, opts...)...)
	metrics.RecordStep(ds.Name, "open", err, time.Since(t0))
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	res, err := r.Run(ctx, ds.Name, partition.Split(stream, partitionSize, stream.Transforms))
	if err != nil {
		return nil, err
	}
	res.Skipped = stream.Skipped()
	if res.Skipped > 0 {
		r.log.Warn("malformed rows excluded from counts", "dataset", ds.Name, "run_id", res.RunID, "skipped", humanize.Comma(int64(res.Skipped)))
	}
	return res, nil
}
