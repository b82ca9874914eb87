// Package gdal shells out to the GDAL command-line suite. Every wrapper
// takes a context so callers can attach timeouts or cancellation to the
// underlying process.
package gdal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// SRSWGS84 is the geographic coordinate reference used for terrain
	// outputs and all bounding boxes.
	SRSWGS84 = "EPSG:4326"

	// SRSWebMercator is the spherical mercator projection used for the
	// imagery tile pyramid.
	SRSWebMercator = "EPSG:3857"
)

// ToolError is returned when an external tool exits non-zero. It carries
// the tool's stderr so the diagnostic survives into wrapped errors.
type ToolError struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Run executes an external tool and returns its stdout.
func Run(ctx context.Context, tool string, args ...string) (string, error) {
	return RunInput(ctx, "", tool, args...)
}

// RunInput is Run with the given string supplied on the tool's stdin.
func RunInput(ctx context.Context, input string, tool string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if err := cmd.Run(); err != nil {
		return "", &ToolError{
			Tool:   tool,
			Err:    err,
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}

	return stdout.String(), nil
}
