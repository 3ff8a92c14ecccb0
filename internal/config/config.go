package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrMissingReferenceFrame is returned when the metric reference frame is
// not configured; every distance and tolerance in the pipeline depends on it.
var ErrMissingReferenceFrame = eris.New("config: missing metric reference frame (projection.utm_zone)")

// Config holds the full application configuration.
type Config struct {
	Inputs     InputsConfig     `yaml:"inputs" mapstructure:"inputs"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Join       JoinConfig       `yaml:"join" mapstructure:"join"`
	Hex        HexConfig        `yaml:"hex" mapstructure:"hex"`
	TimeGrid   TimeGridConfig   `yaml:"time_grid" mapstructure:"time_grid"`
	Traffic    TrafficConfig    `yaml:"traffic" mapstructure:"traffic"`
	Speed      SpeedConfig      `yaml:"speed" mapstructure:"speed"`
	Nodes      NodesConfig      `yaml:"nodes" mapstructure:"nodes"`
	Reduce     ReduceConfig     `yaml:"reduce" mapstructure:"reduce"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// InputsConfig names the raw tabular inputs. EdgesSHP, when set, takes the
// place of EdgesCSV as the road-edge source.
type InputsConfig struct {
	EdgesCSV      string `yaml:"edges_csv" mapstructure:"edges_csv"`
	EdgesSHP      string `yaml:"edges_shp" mapstructure:"edges_shp"`
	SpeedLimitCSV string `yaml:"speedlimit_csv" mapstructure:"speedlimit_csv"`
	CrashesCSV    string `yaml:"crashes_csv" mapstructure:"crashes_csv"`
	WeatherCSV    string `yaml:"weather_csv" mapstructure:"weather_csv"`
}

// ProjectionConfig fixes the metric frame. The defaults are UTM zone 18N
// (EPSG:32618, meters), which covers the source dataset's region.
type ProjectionConfig struct {
	UTMZone  int  `yaml:"utm_zone" mapstructure:"utm_zone"`
	Northern bool `yaml:"northern" mapstructure:"northern"`
}

// JoinConfig configures nearest-feature joins.
type JoinConfig struct {
	// SnapThreshold is the max accept distance in metric-frame units.
	SnapThreshold float64 `yaml:"snap_threshold" mapstructure:"snap_threshold"`
	// Strategy selects the joiner: "bulk" or "probe".
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// HexConfig configures hex clustering.
type HexConfig struct {
	Resolution int `yaml:"resolution" mapstructure:"resolution"`
}

// TimeGridConfig bounds the temporal grid. Start and End are inclusive and
// parsed as "2006-01-02 15:04:05" in UTC.
type TimeGridConfig struct {
	Start    string `yaml:"start" mapstructure:"start"`
	End      string `yaml:"end" mapstructure:"end"`
	BinHours int    `yaml:"bin_hours" mapstructure:"bin_hours"`
}

// ParseRange returns the configured closed date interval.
func (c TimeGridConfig) ParseRange() (time.Time, time.Time, error) {
	const layout = "2006-01-02 15:04:05"
	start, err := time.ParseInLocation(layout, c.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse time_grid.start %q", c.Start)
	}
	end, err := time.ParseInLocation(layout, c.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse time_grid.end %q", c.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, eris.Errorf("config: time_grid.end %q precedes start %q", c.End, c.Start)
	}
	return start, end, nil
}

// BinWidth returns the grid spacing.
func (c TimeGridConfig) BinWidth() time.Duration {
	return time.Duration(c.BinHours) * time.Hour
}

// TrafficConfig holds the synthetic traffic weights. They intentionally sum
// to 0.95; the raw score is rescaled by the weight sum, not renormalized.
type TrafficConfig struct {
	RoadTypeWeight float64 `yaml:"road_type_weight" mapstructure:"road_type_weight"`
	TimeWeight     float64 `yaml:"time_weight" mapstructure:"time_weight"`
	SpeedWeight    float64 `yaml:"speed_weight" mapstructure:"speed_weight"`
}

// SpeedConfig controls the seeded synthetic speed-limit fallback for edges
// the nearest-join could not resolve.
type SpeedConfig struct {
	FallbackSeed int64 `yaml:"fallback_seed" mapstructure:"fallback_seed"`
	FallbackMin  int   `yaml:"fallback_min" mapstructure:"fallback_min"`
	FallbackMax  int   `yaml:"fallback_max" mapstructure:"fallback_max"`
}

// NodesConfig configures intersection-node extraction.
type NodesConfig struct {
	// Tolerance is the grid-quantization merge distance in metric units.
	Tolerance float64 `yaml:"tolerance" mapstructure:"tolerance"`
}

// ReduceConfig configures the deterministic negative downsampling pass.
type ReduceConfig struct {
	KeepThreshold float64 `yaml:"keep_threshold" mapstructure:"keep_threshold"`
	ChunkSize     int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	Workers       int     `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the sqlite artifact store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROADRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.edges_csv", "data/edges.csv")
	v.SetDefault("inputs.speedlimit_csv", "data/speedlimit.csv")
	v.SetDefault("inputs.crashes_csv", "data/crashes.csv")
	v.SetDefault("inputs.weather_csv", "data/weather.csv")
	v.SetDefault("projection.utm_zone", 18)
	v.SetDefault("projection.northern", true)
	v.SetDefault("join.snap_threshold", 60.0)
	v.SetDefault("join.strategy", "bulk")
	v.SetDefault("hex.resolution", 9)
	v.SetDefault("time_grid.start", "2016-01-04 00:00:00")
	v.SetDefault("time_grid.end", "2022-10-19 23:59:59")
	v.SetDefault("time_grid.bin_hours", 4)
	v.SetDefault("traffic.road_type_weight", 0.45)
	v.SetDefault("traffic.time_weight", 0.35)
	v.SetDefault("traffic.speed_weight", 0.15)
	v.SetDefault("speed.fallback_seed", 42)
	v.SetDefault("speed.fallback_min", 15)
	v.SetDefault("speed.fallback_max", 30)
	v.SetDefault("nodes.tolerance", 5.0)
	v.SetDefault("reduce.keep_threshold", 0.5)
	v.SetDefault("reduce.chunk_size", 100000)
	v.SetDefault("reduce.workers", 4)
	v.SetDefault("store.path", "roadrisk.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants that would otherwise surface deep inside a run.
func (c *Config) Validate() error {
	if c.Projection.UTMZone == 0 {
		return ErrMissingReferenceFrame
	}
	if c.Projection.UTMZone < 1 || c.Projection.UTMZone > 60 {
		return eris.Errorf("config: projection.utm_zone %d out of range 1..60", c.Projection.UTMZone)
	}
	if c.Join.SnapThreshold <= 0 {
		return eris.Errorf("config: join.snap_threshold must be positive, got %v", c.Join.SnapThreshold)
	}
	if c.Hex.Resolution < 0 || c.Hex.Resolution > 15 {
		return eris.Errorf("config: hex.resolution %d out of range 0..15", c.Hex.Resolution)
	}
	if c.TimeGrid.BinHours <= 0 {
		return eris.Errorf("config: time_grid.bin_hours must be positive, got %d", c.TimeGrid.BinHours)
	}
	if c.Nodes.Tolerance <= 0 {
		return eris.Errorf("config: nodes.tolerance must be positive, got %v", c.Nodes.Tolerance)
	}
	if c.Reduce.KeepThreshold < 0 || c.Reduce.KeepThreshold > 1 {
		return eris.Errorf("config: reduce.keep_threshold %v out of range [0,1]", c.Reduce.KeepThreshold)
	}
	if c.Speed.FallbackMin > c.Speed.FallbackMax {
		return eris.Errorf("config: speed.fallback_min %d exceeds fallback_max %d", c.Speed.FallbackMin, c.Speed.FallbackMax)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
