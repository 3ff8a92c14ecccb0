package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/pipeline"
	"github.com/gridline-labs/roadrisk-cli/internal/supertable"
)

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Build the per-edge feature table",
	Long: `Runs the pipeline and writes the per-edge artifact: endpoint and midpoint
coordinates, length, cluster features, resolved speed limit, and traffic
volume at the peak time score. The risk score column stays NULL; scoring
happens outside this tool.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.Run(cfg)
		if err != nil {
			return err
		}

		proj, err := pipelineProjector()
		if err != nil {
			return err
		}
		weights := supertable.Weights{
			RoadType: cfg.Traffic.RoadTypeWeight,
			Time:     cfg.Traffic.TimeWeight,
			Speed:    cfg.Traffic.SpeedWeight,
		}
		rows := pipeline.BuildEdgeTable(res.Edges, res.Clusters, proj, weights)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.RecordRun(ctx, res.RunID, "edges"); err != nil {
			return err
		}
		if err := s.InsertEdgeRows(ctx, res.RunID, rows); err != nil {
			return err
		}

		zap.L().Info("edges: table stored",
			zap.String("run_id", res.RunID),
			zap.Int("rows", len(rows)),
		)
		cmd.Println(res.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(edgesCmd)
}
