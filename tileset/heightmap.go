package tileset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

const (
	HeightmapImageName      = "heightmap.png"
	HeightmapDescriptorName = "heightmap.json"
)

// HeightmapDescriptor is the JSON sidecar for an 8-bit heightmap image.
// A stored byte b reconstructs elevation as HeightOffset + b*HeightScale.
type HeightmapDescriptor struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	West         float64 `json:"west"`
	South        float64 `json:"south"`
	East         float64 `json:"east"`
	North        float64 `json:"north"`
	HeightOffset float64 `json:"heightOffset"`
	HeightScale  float64 `json:"heightScale"`
}

// NewHeightmapDescriptor builds the descriptor for a raster whose samples
// span [info.Min, info.Max]. A flat raster gets a unit scale so decoding
// never divides by zero.
func NewHeightmapDescriptor(info gdal.RasterInfo, bounds Bounds) HeightmapDescriptor {
	scale := 1.0
	if info.Max > info.Min {
		scale = (info.Max - info.Min) / 255.0
	}

	return HeightmapDescriptor{
		Width:        info.Width,
		Height:       info.Height,
		West:         bounds.West,
		South:        bounds.South,
		East:         bounds.East,
		North:        bounds.North,
		HeightOffset: info.Min,
		HeightScale:  scale,
	}
}

// Elevation decodes a stored byte back to an approximate elevation.
func (d HeightmapDescriptor) Elevation(b uint8) float64 {
	return d.HeightOffset + float64(b)*d.HeightScale
}

// rasterInfo is swapped out in tests.
var rasterInfo = gdal.Info

// EncodeHeightmap normalizes a geographic-coordinate DEM into an 8-bit
// grayscale image plus its descriptor, both written into outDir. When
// maxSize is positive and the DEM exceeds it on either axis, the DEM is
// first resampled to fit; a failed resample is logged and the original
// raster used instead.
func EncodeHeightmap(ctx context.Context, demPath, outDir string, maxSize int) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create terrain output dir: %w", err)
	}

	info, err := rasterInfo(ctx, demPath)
	if err != nil {
		return fmt.Errorf("inspect DEM: %w", err)
	}

	srcPath := demPath
	if maxSize > 0 && (info.Width > maxSize || info.Height > maxSize) {
		tmpDir, err := os.MkdirTemp("", "site-tiler-heightmap-")
		if err != nil {
			return fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		resized := filepath.Join(tmpDir, "dem_resized.tif")
		if err := gdal.Resize(ctx, demPath, resized, info.Width, info.Height, maxSize); err != nil {
			slog.Warn("downsample failed, using full-size DEM", "dem", demPath, "error", err)
		} else {
			srcPath = resized
			info, err = rasterInfo(ctx, resized)
			if err != nil {
				return fmt.Errorf("inspect resized DEM: %w", err)
			}
		}
	}

	imagePath := filepath.Join(outDir, HeightmapImageName)
	if err := gdal.ScaleToByte(ctx, srcPath, imagePath, info.Min, info.Max, "PNG"); err != nil {
		return fmt.Errorf("encode heightmap image: %w", err)
	}

	bounds, ok := ResolveBounds(ctx, info, gdal.SRSWGS84)
	if !ok {
		slog.Warn("heightmap bounds unresolved, descriptor will carry zeros", "dem", demPath)
	}

	desc := NewHeightmapDescriptor(info, bounds)
	return writeJSON(filepath.Join(outDir, HeightmapDescriptorName), desc)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
