package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Edge is a single road segment with a stable id assigned at ingest.
// Geometry is a connected LineString in the metric frame; multi-part input
// geometries are flattened at ingest by concatenating part coordinates.
type Edge struct {
	ID         int
	Geom       *geom.LineString
	RoadType   int      // raw code, 1..5; 0 when missing or invalid
	GradeKey   string   // bridge/tunnel/layer attributes joined; empty when absent
	SpeedLimit *float64 // nil until resolved by nearest-join or synthetic fallback
	SpeedScore float64  // global min-max of SpeedLimit across all edges
	ClusterID  string   // hex cell of the metric midpoint
}

// RoadTypeWeight maps a road-type code to its traffic weight. Codes outside
// 1..5 get the neutral type-3 weight.
func RoadTypeWeight(roadType int) float64 {
	switch roadType {
	case 1:
		return 1.0
	case 2:
		return 0.8
	case 3:
		return 0.6
	case 4:
		return 0.4
	case 5:
		return 0.2
	}
	return 0.6
}

// RoadTypeScore returns the traffic weight of e's road type.
func (e *Edge) RoadTypeScore() float64 {
	return RoadTypeWeight(e.RoadType)
}

// ClusterStats aggregates the edges that fall into one hex cell.
type ClusterStats struct {
	ID             string
	EdgeCount      int
	MeanRoadScore  float64
	MeanSpeedScore float64
	// Cell center re-encoded as sin/cos of lat/lon in radians so downstream
	// features are continuous across the antimeridian.
	LatSin float64
	LatCos float64
	LonSin float64
	LonCos float64
}

// Crash is one crash report: a timestamped geographic point with the eight
// casualty counts (persons/pedestrians/cyclists/motorists x injured/killed).
// Consumed by snapping and aggregation, never persisted.
type Crash struct {
	Time   time.Time
	Lat    float64
	Lon    float64
	Counts [8]float64
}

// TotalCasualties sums the eight casualty columns, missing values having
// been zeroed at ingest.
func (c Crash) TotalCasualties() float64 {
	var total float64
	for _, n := range c.Counts {
		total += n
	}
	return total
}

// WeatherObs is one irregular weather observation.
type WeatherObs struct {
	Time          time.Time
	Temperature   float64
	Precipitation float64
	Rain          float64
	CloudCover    float64
	WindSpeed     float64
}

// WeatherChannels is the fixed channel order used everywhere weather values
// travel as a vector.
var WeatherChannels = []string{"temperature", "precipitation", "rain", "cloudcover", "windspeed"}

// Channels returns the observation's values in WeatherChannels order.
func (w WeatherObs) Channels() [5]float64 {
	return [5]float64{w.Temperature, w.Precipitation, w.Rain, w.CloudCover, w.WindSpeed}
}

// Node is a deduplicated road-graph node: an edge endpoint or a true
// interior intersection. X/Y are metric-frame means of all raw points merged
// into the node; Lon/Lat is the same centroid reprojected to the geographic
// frame so node output lines up with the lon/lat edge tables.
type Node struct {
	ID    int
	X     float64
	Y     float64
	Lon   float64
	Lat   float64
	Edges []int // incident edge ids, sorted
}

// SuperRow is one supertable row: a (cluster, time bin) cell of the full
// cross product with joined weather, traffic, and label signals.
type SuperRow struct {
	Bin           time.Time
	ClusterID     string
	LatSin        float64
	LatCos        float64
	LonSin        float64
	LonCos        float64
	Weather       [5]float64
	TrafficVolume float64
	Label         int
}

// SuperColumns is the supertable's fixed column order (bin timestamp is the
// index and precedes these).
var SuperColumns = []string{
	"cluster_id",
	"lat_sin", "lat_cos", "lon_sin", "lon_cos",
	"temperature", "precipitation", "rain", "cloudcover", "windspeed",
	"traffic_volume", "label",
}

// EdgeTableRow is the per-edge output artifact consumed by the routing and
// map-rendering collaborators. RiskScore stays nil here; the scoring model
// lives outside this pipeline.
type EdgeTableRow struct {
	EdgeID        int
	StartLon      float64
	StartLat      float64
	EndLon        float64
	EndLat        float64
	MidLon        float64
	MidLat        float64
	LengthM       float64
	ClusterID     string
	LatSin        float64
	LatCos        float64
	LonSin        float64
	LonCos        float64
	RoadType      int
	SpeedLimit    *float64
	TrafficVolume float64
	RiskScore     *float64
}
