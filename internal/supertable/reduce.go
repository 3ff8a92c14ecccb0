package supertable

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// ReduceOptions configures the negative-downsampling pass.
type ReduceOptions struct {
	// KeepThreshold is compared against a uniform value in [0,1) derived
	// from (cluster id, bin); a negative row survives when u >= threshold,
	// so 0.5 drops roughly half of the negatives.
	KeepThreshold float64
	ChunkSize     int
	Workers       int
}

// ReduceCounters reports what went in and what survived.
type ReduceCounters struct {
	In, InPos, InNeg    int
	Out, OutPos, OutNeg int
}

// rowUniform maps (cluster id, bin) to a uniform value in [0,1) via a
// stable 64-bit FNV-1a hash. The decision for a row depends on nothing but
// its own keys, so chunk boundaries and execution order cannot change it.
func rowUniform(clusterID string, bin time.Time) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(clusterID))
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(bin.UTC().Unix()))
	_, _ = h.Write(ts[:])
	return float64(h.Sum64()) / math.Pow(2, 64)
}

// Keep reports whether a row survives reduction: positives always, negatives
// when their uniform value clears the threshold.
func Keep(row model.SuperRow, keepThreshold float64) bool {
	if row.Label == 1 {
		return true
	}
	return rowUniform(row.ClusterID, row.Bin) >= keepThreshold
}

// Reduce retains all positive-label rows and a deterministic hash-sampled
// subset of negative rows. Chunks are filtered in parallel as pure
// transforms and concatenated in input order, so output is identical for
// any chunk size or worker count.
func Reduce(ctx context.Context, rows []model.SuperRow, opts ReduceOptions) ([]model.SuperRow, ReduceCounters, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 100000
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	nChunks := (len(rows) + chunkSize - 1) / chunkSize
	kept := make([][]model.SuperRow, nChunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci := 0; ci < nChunks; ci++ {
		ci := ci
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lo := ci * chunkSize
			hi := min(lo+chunkSize, len(rows))
			var out []model.SuperRow
			for _, row := range rows[lo:hi] {
				if Keep(row, opts.KeepThreshold) {
					out = append(out, row)
				}
			}
			kept[ci] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ReduceCounters{}, err
	}

	var counters ReduceCounters
	counters.In = len(rows)
	for _, row := range rows {
		if row.Label == 1 {
			counters.InPos++
		}
	}
	counters.InNeg = counters.In - counters.InPos

	out := make([]model.SuperRow, 0, len(rows))
	for _, chunk := range kept {
		out = append(out, chunk...)
	}
	counters.Out = len(out)
	for _, row := range out {
		if row.Label == 1 {
			counters.OutPos++
		}
	}
	counters.OutNeg = counters.Out - counters.OutPos

	zap.L().Info("supertable: reduced",
		zap.Int("in_rows", counters.In),
		zap.Int("in_neg", counters.InNeg),
		zap.Int("out_rows", counters.Out),
		zap.Int("out_neg", counters.OutNeg),
	)
	return out, counters, nil
}
