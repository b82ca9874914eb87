package tileset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

// meshTilerTool is the external quantized-mesh tiler. Its presence on
// PATH is the only branch point in the pipeline.
const meshTilerTool = "ctb-tile"

// TerrainStrategy produces the terrain output for one pipeline run.
type TerrainStrategy interface {
	Name() string
	Build(ctx context.Context, demPath, outDir string) error
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// SelectTerrainStrategy resolves the terrain branch once per run: the
// external mesh tiler when available, the heightmap fallback otherwise.
func SelectTerrainStrategy(maxHeightmapSize int) TerrainStrategy {
	if tool, err := lookPath(meshTilerTool); err == nil {
		return &meshStrategy{tool: tool}
	}
	return &heightmapStrategy{maxSize: maxHeightmapSize}
}

type meshStrategy struct {
	tool string
}

func (s *meshStrategy) Name() string { return "quantized-mesh" }

func (s *meshStrategy) Build(ctx context.Context, demPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create terrain output dir: %w", err)
	}

	if _, err := gdal.Run(ctx, s.tool, "-f", "Mesh", "-o", outDir, demPath); err != nil {
		return fmt.Errorf("mesh tiler: %w", err)
	}
	return nil
}

type heightmapStrategy struct {
	maxSize int
}

func (s *heightmapStrategy) Name() string { return "heightmap" }

func (s *heightmapStrategy) Build(ctx context.Context, demPath, outDir string) error {
	tmpDir, err := os.MkdirTemp("", "site-tiler-terrain-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	warped := filepath.Join(tmpDir, "dem_wgs84.tif")
	err = gdal.Warp(ctx, demPath, warped, gdal.WarpOptions{TargetSRS: gdal.SRSWGS84})
	if err != nil {
		return fmt.Errorf("reproject DEM: %w", err)
	}

	slog.Info("encoding heightmap", "dem", demPath, "out", outDir)
	return EncodeHeightmap(ctx, warped, outDir, s.maxSize)
}
