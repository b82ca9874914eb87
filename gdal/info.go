package gdal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Point is a coordinate pair in whatever projection the context implies.
type Point struct {
	X float64
	Y float64
}

// RasterInfo is the metadata gdalinfo reports for a single-band raster:
// band statistics, pixel dimensions, the native-projection corner points
// and, when GDAL can compute one, the WGS84 extent ring.
type RasterInfo struct {
	Path   string
	Width  int
	Height int
	Min    float64
	Max    float64

	// Corners holds the upperLeft, lowerLeft, lowerRight and upperRight
	// corner points in the raster's native projection.
	Corners []Point

	// WGS84Ring is the wgs84Extent polygon's outer ring, already in
	// geographic coordinates. Empty when gdalinfo could not derive one.
	WGS84Ring []Point
}

// Info runs gdalinfo against the raster at path.
func Info(ctx context.Context, path string) (RasterInfo, error) {
	out, err := Run(ctx, "gdalinfo", "-json", "-mm", path)
	if err != nil {
		return RasterInfo{}, fmt.Errorf("query raster metadata: %w", err)
	}
	return parseInfo([]byte(out), path)
}

type infoPayload struct {
	Size              []int                `json:"size"`
	CornerCoordinates map[string][]float64 `json:"cornerCoordinates"`
	WGS84Extent       *struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	} `json:"wgs84Extent"`
	Bands []struct {
		ComputedMin *float64                     `json:"computedMin"`
		ComputedMax *float64                     `json:"computedMax"`
		Minimum     *float64                     `json:"minimum"`
		Maximum     *float64                     `json:"maximum"`
		Metadata    map[string]map[string]string `json:"metadata"`
	} `json:"bands"`
}

func parseInfo(data []byte, path string) (RasterInfo, error) {
	var payload infoPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return RasterInfo{}, fmt.Errorf("parse gdalinfo output for %s: %w", path, err)
	}

	if len(payload.Size) != 2 {
		return RasterInfo{}, fmt.Errorf("unexpected gdalinfo size for %s: %v", path, payload.Size)
	}

	info := RasterInfo{
		Path:   path,
		Width:  payload.Size[0],
		Height: payload.Size[1],
	}

	if len(payload.Bands) == 0 {
		return RasterInfo{}, fmt.Errorf("no raster bands reported for %s", path)
	}

	min, max, err := bandRange(payload)
	if err != nil {
		return RasterInfo{}, fmt.Errorf("band statistics for %s: %w", path, err)
	}
	info.Min = min
	info.Max = max

	// Corner order matches the ring a polygon would trace: UL, LL, LR, UR.
	for _, key := range []string{"upperLeft", "lowerLeft", "lowerRight", "upperRight"} {
		xy, ok := payload.CornerCoordinates[key]
		if !ok || len(xy) < 2 {
			continue
		}
		info.Corners = append(info.Corners, Point{X: xy[0], Y: xy[1]})
	}

	if payload.WGS84Extent != nil && len(payload.WGS84Extent.Coordinates) > 0 {
		for _, pt := range payload.WGS84Extent.Coordinates[0] {
			if len(pt) < 2 {
				continue
			}
			info.WGS84Ring = append(info.WGS84Ring, Point{X: pt[0], Y: pt[1]})
		}
	}

	return info, nil
}

// bandRange resolves the first band's min/max, preferring the directly
// computed statistics and falling back to values precomputed by an
// earlier gdalinfo -stats run.
func bandRange(payload infoPayload) (float64, float64, error) {
	band := payload.Bands[0]

	if band.ComputedMin != nil && band.ComputedMax != nil {
		return *band.ComputedMin, *band.ComputedMax, nil
	}
	if band.Minimum != nil && band.Maximum != nil {
		return *band.Minimum, *band.Maximum, nil
	}

	stats := band.Metadata[""]
	minStr, okMin := stats["STATISTICS_MINIMUM"]
	maxStr, okMax := stats["STATISTICS_MAXIMUM"]
	if !okMin || !okMax {
		return 0, 0, fmt.Errorf("no minimum/maximum statistics available")
	}

	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse STATISTICS_MINIMUM: %w", err)
	}
	max, err := strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse STATISTICS_MAXIMUM: %w", err)
	}

	return min, max, nil
}
