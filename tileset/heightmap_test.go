package tileset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

func TestNewHeightmapDescriptor(t *testing.T) {
	info := gdal.RasterInfo{Width: 512, Height: 512, Min: 100.0, Max: 355.0}
	bounds := Bounds{West: -123.5, South: 45.0, East: -123.4, North: 45.1}

	desc := NewHeightmapDescriptor(info, bounds)

	assert.Equal(t, 512, desc.Width)
	assert.Equal(t, 512, desc.Height)
	assert.Equal(t, 100.0, desc.HeightOffset)
	assert.Equal(t, 1.0, desc.HeightScale)
	assert.Equal(t, -123.5, desc.West)
	assert.Equal(t, 45.1, desc.North)
}

func TestNewHeightmapDescriptorFlatRaster(t *testing.T) {
	info := gdal.RasterInfo{Width: 64, Height: 64, Min: 42.0, Max: 42.0}

	desc := NewHeightmapDescriptor(info, Bounds{})

	assert.Equal(t, 1.0, desc.HeightScale)
	assert.Equal(t, 42.0, desc.HeightOffset)
	assert.Equal(t, 42.0, desc.Elevation(0))
}

func TestElevationQuantizationError(t *testing.T) {
	ranges := []struct {
		min float64
		max float64
	}{
		{100.0, 355.0},
		{-12.5, 2843.75},
		{0.0, 1.0},
		{-100.0, -50.0},
	}

	for _, r := range ranges {
		info := gdal.RasterInfo{Width: 16, Height: 16, Min: r.min, Max: r.max}
		desc := NewHeightmapDescriptor(info, Bounds{})
		step := (r.max - r.min) / 255.0

		for b := 0; b <= 255; b++ {
			exact := r.min + float64(b)/255.0*(r.max-r.min)
			got := desc.Elevation(uint8(b))
			if diff := math.Abs(got - exact); diff > step/2 {
				t.Fatalf("range [%v,%v] byte %d: decoded %v, exact %v, error %v exceeds %v",
					r.min, r.max, b, got, exact, diff, step/2)
			}
		}

		// Endpoints reconstruct exactly.
		assert.InDelta(t, r.min, desc.Elevation(0), 1e-9)
		assert.InDelta(t, r.max, desc.Elevation(255), 1e-9)
	}
}
