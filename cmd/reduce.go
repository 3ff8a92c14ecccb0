package main

import (
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/supertable"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Downsample a stored supertable's negative rows",
	Long: `Reads a stored supertable run and writes a reduced copy under a new run id:
all positive-label rows survive, negatives are kept only when the hash of
their (cluster, bin) key clears the keep threshold. The decision is a pure
function of the row's keys, so repeated runs reduce identically.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srcRun, _ := cmd.Flags().GetString("run-id")
		if srcRun == "" {
			return eris.New("reduce: --run-id is required")
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		rows, err := s.SuperRows(ctx, srcRun)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return eris.Errorf("reduce: run %s has no supertable rows", srcRun)
		}

		kept, counters, err := supertable.Reduce(ctx, rows, supertable.ReduceOptions{
			KeepThreshold: cfg.Reduce.KeepThreshold,
			ChunkSize:     cfg.Reduce.ChunkSize,
			Workers:       cfg.Reduce.Workers,
		})
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		if err := s.RecordRun(ctx, runID, "reduce"); err != nil {
			return err
		}
		if err := s.InsertSuperRows(ctx, runID, kept); err != nil {
			return err
		}

		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			if err := exportSuperCSV(csvPath, kept); err != nil {
				return err
			}
		}

		zap.L().Info("reduce: supertable reduced",
			zap.String("source_run_id", srcRun),
			zap.String("run_id", runID),
			zap.Int("in", counters.In),
			zap.Int("out", counters.Out),
			zap.Int("in_pos", counters.InPos),
			zap.Int("in_neg", counters.InNeg),
			zap.Int("out_neg", counters.OutNeg),
		)
		cmd.Println(runID)
		return nil
	},
}

func init() {
	reduceCmd.Flags().String("run-id", "", "run id of the stored supertable to reduce")
	reduceCmd.Flags().String("csv", "", "also export the reduced supertable as CSV to this path")
	rootCmd.AddCommand(reduceCmd)
}
