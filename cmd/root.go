package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/config"
	"github.com/gridline-labs/roadrisk-cli/internal/geospatial"
	"github.com/gridline-labs/roadrisk-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "roadrisk-cli",
	Short: "Road-risk feature engineering pipeline",
	Long:  "Builds the cluster/time-bin supertable, the per-edge feature table, and the road-graph node table from raw road, speed-limit, crash, and weather data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// pipelineProjector builds the configured metric-frame projector.
func pipelineProjector() (*geospatial.Projector, error) {
	return geospatial.NewProjector(cfg.Projection.UTMZone, cfg.Projection.Northern)
}

// openStore opens the configured sqlite artifact store with the schema
// applied.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	s, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
