package tileset

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeTree lays out a minimal XYZ tile directory with a tiles.json
// sidecar, the shape the imagery stage leaves on disk.
func writeFakeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	tiles := map[string][]byte{
		"10/163/357.png": []byte("tile-a"),
		"10/163/358.png": []byte("tile-b"),
		"11/326/715.png": []byte("tile-a"), // duplicate payload on purpose
	}
	for rel, data := range tiles {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}

	meta := `{"west":-123.5,"south":45.0,"east":-123.4,"north":45.1,"minZoom":10,"maxZoom":11}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFilename), []byte(meta), 0644))

	return dir
}

func TestPackTileDirectory(t *testing.T) {
	dir := writeFakeTree(t)
	dsn := filepath.Join(t.TempDir(), "imagery.mbtiles")

	require.NoError(t, PackTileDirectory(dir, dsn, "test tiles", false))

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	var tileCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&tileCount))
	assert.Equal(t, 3, tileCount)

	// Identical payloads share one images row.
	var imageCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM images").Scan(&imageCount))
	assert.Equal(t, 2, imageCount)

	// XYZ y=357 at z=10 lands on TMS row 2^10-1-357.
	var data []byte
	err = db.QueryRow(
		"SELECT tile_data FROM tiles WHERE zoom_level=10 AND tile_column=163 AND tile_row=?",
		1023-357).Scan(&data)
	require.NoError(t, err)
	assert.Equal(t, []byte("tile-a"), data)

	metadata := map[string]string{}
	rows, err := db.Query("SELECT name, value FROM metadata")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var k, v string
		require.NoError(t, rows.Scan(&k, &v))
		metadata[k] = v
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, "test tiles", metadata["name"])
	assert.Equal(t, "png", metadata["format"])
	assert.Equal(t, "10", metadata["minzoom"])
	assert.Equal(t, "11", metadata["maxzoom"])
	assert.Equal(t, "-123.500000,45.000000,-123.400000,45.100000", metadata["bounds"])
}

func TestPackTileDirectoryEmpty(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "imagery.mbtiles")
	err := PackTileDirectory(t.TempDir(), dsn, "empty", false)
	assert.Error(t, err)
}

func TestMetadataFromTiles(t *testing.T) {
	dir := writeFakeTree(t)
	require.NoError(t, os.Remove(filepath.Join(dir, MetadataFilename)))

	tiles, err := collectTree(dir)
	require.NoError(t, err)
	require.Len(t, tiles, 3)

	meta := metadataFromTiles(tiles)
	assert.Equal(t, 10, meta.MinZoom)
	assert.Equal(t, 11, meta.MaxZoom)
	assert.Less(t, meta.West, meta.East)
	assert.Less(t, meta.South, meta.North)
}
