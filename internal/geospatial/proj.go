package geospatial

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/wroge/wgs84"
)

// Projector converts between the geographic frame (EPSG:4326 lon/lat) and a
// UTM metric frame. All distance, length, and tolerance math in the pipeline
// runs in the metric frame.
type Projector struct {
	zone     int
	northern bool
	fwd      wgs84.Func
	inv      wgs84.Func
}

// NewProjector builds a Projector for the given UTM zone and hemisphere.
func NewProjector(zone int, northern bool) (*Projector, error) {
	if zone < 1 || zone > 60 {
		return nil, eris.Errorf("proj: UTM zone %d out of range 1..60", zone)
	}
	utm := wgs84.UTM(float64(zone), northern)
	return &Projector{
		zone:     zone,
		northern: northern,
		fwd:      wgs84.LonLat().To(utm),
		inv:      utm.To(wgs84.LonLat()),
	}, nil
}

// ToMetric projects a geographic coordinate into metric easting/northing.
func (p *Projector) ToMetric(lon, lat float64) (x, y float64) {
	x, y, _ = p.fwd(lon, lat, 0)
	return x, y
}

// ToGeographic inverts ToMetric.
func (p *Projector) ToGeographic(x, y float64) (lon, lat float64) {
	lon, lat, _ = p.inv(x, y, 0)
	return lon, lat
}

// LineToMetric reprojects a geographic LineString into the metric frame.
func (p *Projector) LineToMetric(ls *geom.LineString) *geom.LineString {
	flat := ls.FlatCoords()
	out := make([]float64, len(flat))
	for i := 0; i+1 < len(flat); i += 2 {
		out[i], out[i+1] = p.ToMetric(flat[i], flat[i+1])
	}
	return geom.NewLineStringFlat(geom.XY, out)
}
