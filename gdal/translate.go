package gdal

import (
	"context"
	"fmt"
	"strconv"
)

// ScaleToByte converts src into an 8-bit single-band image at dst,
// linearly mapping [srcMin, srcMax] onto [0, 255]. Values outside the
// source range are clamped by gdal_translate.
func ScaleToByte(ctx context.Context, src, dst string, srcMin, srcMax float64, format string) error {
	if format == "" {
		format = "PNG"
	}

	_, err := Run(ctx, "gdal_translate",
		"-of", format,
		"-ot", "Byte",
		"-scale",
		strconv.FormatFloat(srcMin, 'f', -1, 64),
		strconv.FormatFloat(srcMax, 'f', -1, 64),
		"0", "255",
		src, dst)
	if err != nil {
		return fmt.Errorf("rescale %s to byte range: %w", src, err)
	}
	return nil
}

// Resize resamples src so its longest axis is maxDim pixels, leaving the
// other axis to gdal_translate to keep the aspect ratio.
func Resize(ctx context.Context, src, dst string, width, height, maxDim int) error {
	outW, outH := "0", "0"
	if width >= height {
		outW = strconv.Itoa(maxDim)
	} else {
		outH = strconv.Itoa(maxDim)
	}

	_, err := Run(ctx, "gdal_translate",
		"-r", "bilinear",
		"-outsize", outW, outH,
		src, dst)
	if err != nil {
		return fmt.Errorf("resize %s to max %d px: %w", src, maxDim, err)
	}
	return nil
}
