package gdal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoints(t *testing.T) {
	out := "-123.5 45.0 0\n-123.4 45.1 0\n"

	pts, err := parsePoints(out, 2)
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: -123.5, Y: 45.0}, {X: -123.4, Y: 45.1}}, pts)
}

func TestParsePointsCountMismatch(t *testing.T) {
	_, err := parsePoints("-123.5 45.0\n", 4)
	assert.Error(t, err)
}

func TestParsePointsEmptyOutput(t *testing.T) {
	_, err := parsePoints("", 4)
	assert.Error(t, err)
}

func TestParsePointsGarbage(t *testing.T) {
	_, err := parsePoints("ERROR 1: something broke\n", 1)
	assert.Error(t, err)
}
