package tileset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deckfamilyfarm/site-tiler/gdal"
)

// ImageryOptions control the imagery tiling stage.
type ImageryOptions struct {
	MinZoom int
	MaxZoom int

	// KeepReprojected copies the intermediate web-mercator raster next
	// to the tile directory before it is cleaned up, for debugging.
	KeepReprojected bool
}

// BuildImageryTiles reprojects the imagery raster to spherical mercator
// and tiles it into an XYZ pyramid under outDir. The reprojected
// intermediate lives in a temp dir that is removed whether or not the
// tiler succeeds.
func BuildImageryTiles(ctx context.Context, imageryPath, outDir string, opts ImageryOptions) error {
	tmpDir, err := os.MkdirTemp("", "site-tiler-imagery-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	warped := filepath.Join(tmpDir, "imagery_3857.tif")
	err = gdal.Warp(ctx, imageryPath, warped, gdal.WarpOptions{TargetSRS: gdal.SRSWebMercator})
	if err != nil {
		return fmt.Errorf("reproject imagery: %w", err)
	}

	warnIfBlank(ctx, warped)

	if opts.KeepReprojected {
		debugPath := filepath.Join(filepath.Dir(outDir), "imagery_3857_debug.tif")
		if err := copyFile(warped, debugPath); err != nil {
			slog.Warn("could not keep reprojected imagery", "error", err)
		} else {
			slog.Info("kept reprojected imagery", "path", debugPath)
		}
	}

	if err := gdal.GenerateXYZTiles(ctx, warped, outDir, opts.MinZoom, opts.MaxZoom); err != nil {
		return fmt.Errorf("imagery tiling: %w", err)
	}
	return nil
}

// warnIfBlank flags imagery whose band collapsed to all zeros, which
// usually means the upstream render produced an empty picture.
func warnIfBlank(ctx context.Context, path string) {
	info, err := rasterInfo(ctx, path)
	if err != nil {
		return
	}
	if info.Min == 0 && info.Max == 0 {
		slog.Warn("imagery appears blank, band min and max are both zero", "raster", path)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
