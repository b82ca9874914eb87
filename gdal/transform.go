package gdal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TransformPoints reprojects points from srcSRS to dstSRS with
// gdaltransform. Points are written one per line on stdin and read back
// in the same order.
func TransformPoints(ctx context.Context, srcSRS, dstSRS string, pts []Point) ([]Point, error) {
	if len(pts) == 0 {
		return nil, nil
	}

	var input strings.Builder
	for _, pt := range pts {
		fmt.Fprintf(&input, "%s %s\n",
			strconv.FormatFloat(pt.X, 'f', -1, 64),
			strconv.FormatFloat(pt.Y, 'f', -1, 64))
	}

	out, err := RunInput(ctx, input.String(), "gdaltransform",
		"-s_srs", srcSRS,
		"-t_srs", dstSRS,
		"-output_xy")
	if err != nil {
		return nil, fmt.Errorf("transform points %s -> %s: %w", srcSRS, dstSRS, err)
	}

	return parsePoints(out, len(pts))
}

func parsePoints(out string, want int) ([]Point, error) {
	var pts []Point
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("unexpected gdaltransform line %q", line)
		}

		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse transformed x %q: %w", fields[0], err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse transformed y %q: %w", fields[1], err)
		}

		pts = append(pts, Point{X: x, Y: y})
	}

	if len(pts) != want {
		return nil, fmt.Errorf("transformed %d points, expected %d", len(pts), want)
	}

	return pts, nil
}
