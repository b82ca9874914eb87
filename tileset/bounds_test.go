package tileset

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

func TestBoundsValid(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		want   bool
	}{
		{"farm site", Bounds{West: -123.5, South: 45.0, East: -123.4, North: 45.1}, true},
		{"whole world", Bounds{West: -180, South: -90, East: 180, North: 90}, true},
		{"zero box", Bounds{}, true},
		{"west beyond range", Bounds{West: 99999, South: 45.0, East: -123.4, North: 45.1}, false},
		{"west east swapped", Bounds{West: -123.4, South: 45.0, East: -123.5, North: 45.1}, false},
		{"south north swapped", Bounds{West: -123.5, South: 45.1, East: -123.4, North: 45.0}, false},
		{"latitude out of range", Bounds{West: -123.5, South: -91, East: -123.4, North: 45.1}, false},
		{"NaN", Bounds{West: math.NaN(), South: 45.0, East: -123.4, North: 45.1}, false},
		{"Inf", Bounds{West: -123.5, South: 45.0, East: math.Inf(1), North: 45.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bounds.Valid())
		})
	}
}

func TestBoundsFromPoints(t *testing.T) {
	ring := []gdal.Point{
		{X: -123.5, Y: 45.1},
		{X: -123.5, Y: 45.0},
		{X: -123.4, Y: 45.0},
		{X: -123.4, Y: 45.1},
		{X: -123.5, Y: 45.1},
	}

	b, ok := boundsFromPoints(ring)
	require.True(t, ok)
	assert.Equal(t, Bounds{West: -123.5, South: 45.0, East: -123.4, North: 45.1}, b)

	_, ok = boundsFromPoints(nil)
	assert.False(t, ok)
}

func TestResolveBoundsFromExtentRing(t *testing.T) {
	info := gdal.RasterInfo{
		Path: "imagery.tif",
		WGS84Ring: []gdal.Point{
			{X: -123.5, Y: 45.1},
			{X: -123.5, Y: 45.0},
			{X: -123.4, Y: 45.0},
			{X: -123.4, Y: 45.1},
		},
	}

	b, ok := ResolveBounds(context.Background(), info, "")
	require.True(t, ok)
	assert.Equal(t, Bounds{West: -123.5, South: 45.0, East: -123.4, North: 45.1}, b)
}

func TestResolveBoundsFallbackTransform(t *testing.T) {
	defer func() { transformPoints = gdal.TransformPoints }()

	var gotSRS string
	transformPoints = func(ctx context.Context, srcSRS, dstSRS string, pts []gdal.Point) ([]gdal.Point, error) {
		gotSRS = srcSRS
		return []gdal.Point{
			{X: -123.5, Y: 45.1},
			{X: -123.5, Y: 45.0},
			{X: -123.4, Y: 45.0},
			{X: -123.4, Y: 45.1},
		}, nil
	}

	// Invalid extent ring forces the corner-point fallback.
	info := gdal.RasterInfo{
		Path:      "imagery.tif",
		WGS84Ring: []gdal.Point{{X: 99999, Y: 45.1}, {X: 99999, Y: 45.0}},
		Corners: []gdal.Point{
			{X: -13747000, Y: 5636000},
			{X: -13747000, Y: 5621000},
			{X: -13736000, Y: 5621000},
			{X: -13736000, Y: 5636000},
		},
	}

	b, ok := ResolveBounds(context.Background(), info, "")
	require.True(t, ok)
	assert.Equal(t, gdal.SRSWebMercator, gotSRS)
	assert.Equal(t, Bounds{West: -123.5, South: 45.0, East: -123.4, North: 45.1}, b)
}

func TestResolveBoundsUnresolved(t *testing.T) {
	defer func() { transformPoints = gdal.TransformPoints }()

	transformPoints = func(ctx context.Context, srcSRS, dstSRS string, pts []gdal.Point) ([]gdal.Point, error) {
		return nil, errors.New("gdaltransform: exit status 1")
	}

	info := gdal.RasterInfo{
		Path:    "imagery.tif",
		Corners: []gdal.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}, {X: 7, Y: 8}},
	}

	b, ok := ResolveBounds(context.Background(), info, "EPSG:26910")
	assert.False(t, ok)
	assert.Equal(t, Bounds{}, b)
}

func TestResolveBoundsNoCorners(t *testing.T) {
	b, ok := ResolveBounds(context.Background(), gdal.RasterInfo{Path: "imagery.tif"}, "")
	assert.False(t, ok)
	assert.Equal(t, Bounds{}, b)
}
