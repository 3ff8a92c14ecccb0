package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/pipeline"
	"github.com/gridline-labs/roadrisk-cli/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the supertable from the configured inputs",
	Long: `Runs the full pipeline: ingests roads, speed limits, crashes, and weather,
joins and clusters them, and writes one supertable row per (cluster, time bin)
to the artifact store. Use --csv to also export the table as CSV.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.Run(cfg)
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.RecordRun(ctx, res.RunID, "build"); err != nil {
			return err
		}
		if err := s.InsertSuperRows(ctx, res.RunID, res.Rows); err != nil {
			return err
		}

		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			if err := exportSuperCSV(csvPath, res.Rows); err != nil {
				return err
			}
		}

		zap.L().Info("build: supertable stored",
			zap.String("run_id", res.RunID),
			zap.Int("rows", len(res.Rows)),
		)
		cmd.Println(res.RunID)
		return nil
	},
}

// exportSuperCSV writes the supertable rows to a CSV file.
func exportSuperCSV(path string, rows []model.SuperRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "build: create CSV %s", path)
	}
	defer func() { _ = f.Close() }()
	return store.WriteSuperCSV(f, rows)
}

func init() {
	buildCmd.Flags().String("csv", "", "also export the supertable as CSV to this path")
	rootCmd.AddCommand(buildCmd)
}
