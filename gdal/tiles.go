package gdal

import (
	"context"
	"fmt"
	"os/exec"
)

// gdal2tiles ships as a Python script; some distributions install it
// without the extension.
var gdal2TilesNames = []string{"gdal2tiles.py", "gdal2tiles"}

func findGdal2Tiles() (string, error) {
	for _, name := range gdal2TilesNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("gdal2tiles not found on PATH")
}

// GenerateXYZTiles runs gdal2tiles to build a slippy-map pyramid from an
// already web-mercator raster. minZoom/maxZoom are forwarded when
// maxZoom is positive; otherwise gdal2tiles picks the range itself.
func GenerateXYZTiles(ctx context.Context, src, outDir string, minZoom, maxZoom int) error {
	tool, err := findGdal2Tiles()
	if err != nil {
		return err
	}

	args := []string{
		"--profile=mercator",
		"--xyz",
		"-r", "bilinear",
		"-w", "none",
	}
	if maxZoom > 0 {
		args = append(args, "-z", fmt.Sprintf("%d-%d", minZoom, maxZoom))
	}
	args = append(args, src, outDir)

	if _, err := Run(ctx, tool, args...); err != nil {
		return fmt.Errorf("generate XYZ tiles from %s: %w", src, err)
	}
	return nil
}
