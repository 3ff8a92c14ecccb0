package supertable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-labs/roadrisk-cli/internal/geospatial"
	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

var gridStart = time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC)

func snap(cluster string, at time.Time, counts [8]float64) geospatial.SnappedCrash {
	return geospatial.SnappedCrash{
		Crash:     model.Crash{Time: at, Counts: counts},
		ClusterID: cluster,
	}
}

func TestAggregateCrashes_FloorsToBin(t *testing.T) {
	clusters := []*model.ClusterStats{{ID: "c1", EdgeCount: 2}}
	snapped := []geospatial.SnappedCrash{
		snap("c1", gridStart.Add(5*time.Hour), [8]float64{1}),
		snap("c1", gridStart.Add(7*time.Hour+59*time.Minute), [8]float64{0, 1}),
	}

	labels := AggregateCrashes(snapped, clusters, gridStart, 4*time.Hour, 6)
	require.Len(t, labels, 1)
	assert.Equal(t, 1, labels[CellKey{ClusterID: "c1", Bin: gridStart.Add(4 * time.Hour)}])
}

func TestAggregateCrashes_AnyCrashLabelsCell(t *testing.T) {
	clusters := []*model.ClusterStats{{ID: "c1", EdgeCount: 50}}
	// Zero casualties still labels the cell: the per-edge rate is >= 0 for
	// any snapped crash.
	snapped := []geospatial.SnappedCrash{snap("c1", gridStart, [8]float64{})}

	labels := AggregateCrashes(snapped, clusters, gridStart, 4*time.Hour, 6)
	assert.Equal(t, 1, labels[CellKey{ClusterID: "c1", Bin: gridStart}])
}

func TestAggregateCrashes_SeparatesClustersAndBins(t *testing.T) {
	clusters := []*model.ClusterStats{{ID: "c1", EdgeCount: 1}, {ID: "c2", EdgeCount: 1}}
	snapped := []geospatial.SnappedCrash{
		snap("c1", gridStart, [8]float64{1}),
		snap("c2", gridStart, [8]float64{1}),
		snap("c1", gridStart.Add(4*time.Hour), [8]float64{1}),
	}

	labels := AggregateCrashes(snapped, clusters, gridStart, 4*time.Hour, 6)
	assert.Len(t, labels, 3)
}

func TestAggregateCrashes_UnknownClusterEdgeCountFloored(t *testing.T) {
	// A cluster id missing from the stats gets its edge count floored to 1.
	snapped := []geospatial.SnappedCrash{snap("ghost", gridStart, [8]float64{2})}
	labels := AggregateCrashes(snapped, nil, gridStart, 4*time.Hour, 6)
	assert.Equal(t, 1, labels[CellKey{ClusterID: "ghost", Bin: gridStart}])
}

func TestAggregateCrashes_OutsideGridDropped(t *testing.T) {
	snapped := []geospatial.SnappedCrash{
		snap("c1", gridStart.Add(-time.Hour), [8]float64{1}),
		snap("c1", gridStart.Add(100*time.Hour), [8]float64{1}),
	}
	labels := AggregateCrashes(snapped, nil, gridStart, 4*time.Hour, 6)
	assert.Empty(t, labels)
}

func TestAggregateCrashes_Empty(t *testing.T) {
	labels := AggregateCrashes(nil, nil, gridStart, 4*time.Hour, 6)
	assert.Empty(t, labels)
}
