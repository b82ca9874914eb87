// Package tileset turns a DEM and an orthoimagery raster into
// web-consumable tiled assets: a terrain tile set (quantized mesh when
// an external mesh tiler is installed, a normalized heightmap otherwise)
// and an XYZ imagery pyramid with a tiles.json descriptor.
package tileset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

const (
	TerrainDirName = "terrain"
	ImageryDirName = "imagery"
)

// Config carries everything one pipeline run needs. It is populated by
// the CLI layer; the core never reads process environment.
type Config struct {
	DEMPath     string
	ImageryPath string
	OutputDir   string

	// MaxHeightmapSize caps the heightmap's pixel dimensions when the
	// heightmap terrain path is taken. Zero means no cap.
	MaxHeightmapSize int

	// MinZoom/MaxZoom bound the imagery pyramid. When MaxZoom is zero
	// the tile generator picks the range from the raster resolution.
	MinZoom int
	MaxZoom int

	// KeepReprojected preserves a debug copy of the intermediate
	// web-mercator imagery raster.
	KeepReprojected bool
}

func (c Config) validate() error {
	if c.DEMPath == "" || c.ImageryPath == "" || c.OutputDir == "" {
		return fmt.Errorf("dem, imagery and output paths are all required")
	}
	for _, path := range []string{c.DEMPath, c.ImageryPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input raster: %w", err)
		}
	}
	return nil
}

// Pipeline runs the terrain, imagery and metadata stages sequentially
// against a shared output root.
type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes the full pipeline. Each stage failure halts the run;
// the documented non-fatal paths (failed downsample, unresolved bounds)
// degrade with a warning instead.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.cfg.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	terrainDir := filepath.Join(p.cfg.OutputDir, TerrainDirName)
	imageryDir := filepath.Join(p.cfg.OutputDir, ImageryDirName)

	strategy := SelectTerrainStrategy(p.cfg.MaxHeightmapSize)
	slog.Info("terrain stage", "strategy", strategy.Name(), "dem", p.cfg.DEMPath)
	if err := strategy.Build(ctx, p.cfg.DEMPath, terrainDir); err != nil {
		return fmt.Errorf("terrain stage: %w", err)
	}

	slog.Info("imagery stage", "imagery", p.cfg.ImageryPath)
	opts := ImageryOptions{
		MinZoom:         p.cfg.MinZoom,
		MaxZoom:         p.cfg.MaxZoom,
		KeepReprojected: p.cfg.KeepReprojected,
	}
	if err := BuildImageryTiles(ctx, p.cfg.ImageryPath, imageryDir, opts); err != nil {
		return fmt.Errorf("imagery stage: %w", err)
	}

	slog.Info("metadata stage", "dir", imageryDir)
	err := WriteTileSetMetadata(ctx, p.cfg.ImageryPath, gdal.SRSWebMercator, imageryDir)
	if err != nil {
		return fmt.Errorf("metadata stage: %w", err)
	}

	return nil
}
