package tileset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// MetadataFilename is the sidecar written at the imagery tile root.
	MetadataFilename = "tiles.json"

	// Zoom range reported when the tile directory has no numeric
	// children. A documented default, not a measured value.
	defaultMinZoom = 0
	defaultMaxZoom = 18
)

// TileSetMetadata describes the spatial and zoom envelope of a generated
// tile pyramid.
type TileSetMetadata struct {
	West    float64 `json:"west"`
	South   float64 `json:"south"`
	East    float64 `json:"east"`
	North   float64 `json:"north"`
	MinZoom int     `json:"minZoom"`
	MaxZoom int     `json:"maxZoom"`
}

// DiscoverZoomRange scans tileDir's immediate children for zoom-level
// directories, i.e. names composed entirely of digits.
func DiscoverZoomRange(tileDir string) (int, int) {
	entries, err := os.ReadDir(tileDir)
	if err != nil {
		return defaultMinZoom, defaultMaxZoom
	}

	minZoom, maxZoom := -1, -1
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		z, ok := zoomFromName(entry.Name())
		if !ok {
			continue
		}
		if minZoom < 0 || z < minZoom {
			minZoom = z
		}
		if z > maxZoom {
			maxZoom = z
		}
	}

	if minZoom < 0 {
		return defaultMinZoom, defaultMaxZoom
	}
	return minZoom, maxZoom
}

func zoomFromName(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	z := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
		z = z*10 + int(r-'0')
	}
	return z, true
}

// WriteTileSetMetadata resolves the imagery raster's bounding box,
// discovers the generated zoom range and writes tiles.json at the tile
// directory root, replacing any previous file. Unresolved bounds degrade
// to zeros with a warning rather than failing the stage; a failed
// metadata query on the raster itself is fatal.
func WriteTileSetMetadata(ctx context.Context, imageryPath, srcSRS, tileDir string) error {
	info, err := rasterInfo(ctx, imageryPath)
	if err != nil {
		return fmt.Errorf("inspect imagery: %w", err)
	}

	bounds, ok := ResolveBounds(ctx, info, srcSRS)
	if !ok {
		slog.Warn("tile set bounds unresolved, writing zeros", "raster", imageryPath)
	}

	minZoom, maxZoom := DiscoverZoomRange(tileDir)

	meta := TileSetMetadata{
		West:    bounds.West,
		South:   bounds.South,
		East:    bounds.East,
		North:   bounds.North,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
	}

	return writeJSON(filepath.Join(tileDir, MetadataFilename), meta)
}
