package gdal

import (
	"context"
	"fmt"
)

// WarpOptions control a gdalwarp reprojection.
type WarpOptions struct {
	TargetSRS string

	// Resampling defaults to bilinear, which is what both the terrain
	// and imagery stages want.
	Resampling string

	// DstNodata, when set, is passed through so the nodata sentinel
	// survives reprojection.
	DstNodata string
}

// Warp reprojects src into dst.
func Warp(ctx context.Context, src, dst string, opts WarpOptions) error {
	resampling := opts.Resampling
	if resampling == "" {
		resampling = "bilinear"
	}

	args := []string{
		"-t_srs", opts.TargetSRS,
		"-r", resampling,
		"-overwrite",
	}
	if opts.DstNodata != "" {
		args = append(args, "-dstnodata", opts.DstNodata)
	}
	args = append(args, src, dst)

	if _, err := Run(ctx, "gdalwarp", args...); err != nil {
		return fmt.Errorf("reproject %s to %s: %w", src, opts.TargetSRS, err)
	}
	return nil
}
