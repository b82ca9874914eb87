package tileset

import (
	"context"
	"log/slog"
	"math"

	"github.com/paulmach/orb"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

// Bounds is a WGS84 bounding box in degrees.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Valid reports whether the box is finite, ordered and inside the valid
// longitude/latitude ranges.
func (b Bounds) Valid() bool {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if b.West < -180 || b.East > 180 || b.West > b.East {
		return false
	}
	if b.South < -90 || b.North > 90 || b.South > b.North {
		return false
	}
	return true
}

// Bound returns the orb representation of the box.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// boundsFromPoints takes the min/max of a set of lon/lat vertices.
func boundsFromPoints(pts []gdal.Point) (Bounds, bool) {
	if len(pts) == 0 {
		return Bounds{}, false
	}

	bound := orb.Point{pts[0].X, pts[0].Y}.Bound()
	for _, pt := range pts[1:] {
		bound = bound.Extend(orb.Point{pt.X, pt.Y})
	}

	return Bounds{
		West:  bound.Min.X(),
		South: bound.Min.Y(),
		East:  bound.Max.X(),
		North: bound.Max.Y(),
	}, true
}

// transformPoints is swapped out in tests to exercise the fallback path
// without a gdaltransform binary.
var transformPoints = gdal.TransformPoints

// ResolveBounds derives a geographic bounding box for the raster
// described by info. The primary source is the raster's own WGS84 extent
// ring; when that is missing or invalid the native corner points are
// transformed from srcSRS (spherical mercator when unknown). The second
// return is false when no valid box could be produced; callers that must
// serialize anyway write the zero box and treat it as "unresolved", not
// as a box at the origin.
func ResolveBounds(ctx context.Context, info gdal.RasterInfo, srcSRS string) (Bounds, bool) {
	if b, ok := boundsFromPoints(info.WGS84Ring); ok && b.Valid() {
		return b, true
	}

	if len(info.Corners) == 0 {
		slog.Warn("no corner coordinates to fall back on", "raster", info.Path)
		return Bounds{}, false
	}

	if srcSRS == "" {
		srcSRS = gdal.SRSWebMercator
	}

	pts, err := transformPoints(ctx, srcSRS, gdal.SRSWGS84, info.Corners)
	if err != nil {
		slog.Warn("corner transform failed, bounds unresolved", "raster", info.Path, "error", err)
		return Bounds{}, false
	}

	b, ok := boundsFromPoints(pts)
	if !ok || !b.Valid() {
		slog.Warn("transformed corners produced no valid bounds", "raster", info.Path)
		return Bounds{}, false
	}

	return b, true
}
