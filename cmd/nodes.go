package main

import (
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/pipeline"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Build the road-graph node table",
	Long: `Derives the deduplicated node set from the road edges: every endpoint plus
every true interior intersection, with grade-separated crossings skipped and
nearby candidates merged by grid quantization.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, err := pipeline.LoadEdges(cfg.Inputs)
		if err != nil {
			return err
		}
		proj, err := pipelineProjector()
		if err != nil {
			return err
		}
		edges := pipeline.BuildEdges(records, proj)
		nodes := pipeline.BuildNodeTable(edges, proj, cfg.Nodes.Tolerance)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		runID := uuid.NewString()
		if err := s.RecordRun(ctx, runID, "nodes"); err != nil {
			return err
		}
		if err := s.InsertNodes(ctx, runID, nodes); err != nil {
			return err
		}

		zap.L().Info("nodes: table stored",
			zap.String("run_id", runID),
			zap.Int("edges", len(edges)),
			zap.Int("nodes", len(nodes)),
		)
		cmd.Println(runID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
