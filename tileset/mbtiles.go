package tileset

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Register sqlite3 database driver
	"github.com/paulmach/orb/maptile"
	"github.com/schollz/progressbar/v3"
)

const mbtilesBatchSize = 1000

// MbtilesPacker writes tiles from a generated XYZ directory tree into a
// single mbtiles archive, deduplicating identical tile payloads.
type MbtilesPacker struct {
	db         *sql.DB
	txn        *sql.Tx
	batchCount int
	format     string
}

func NewMbtilesPacker(dsn string) (*MbtilesPacker, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	p := &MbtilesPacker{db: db}
	if err := p.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *MbtilesPacker) createSchema() error {
	_, err := p.db.Exec(`
		BEGIN TRANSACTION;
		CREATE TABLE IF NOT EXISTS map (
			zoom_level INTEGER NOT NULL,
			tile_column INTEGER NOT NULL,
			tile_row INTEGER NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);
		CREATE TABLE IF NOT EXISTS images (
			tile_data BLOB NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT
		);
		CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);
		CREATE VIEW IF NOT EXISTS tiles AS
		SELECT
			map.zoom_level AS zoom_level,
			map.tile_column AS tile_column,
			map.tile_row AS tile_row,
			images.tile_data AS tile_data
		FROM map
		JOIN images ON images.tile_id = map.tile_id;
		COMMIT;
		PRAGMA synchronous=OFF;
	`)
	return err
}

// Save stores one tile. The tile is in XYZ addressing; the row is
// flipped to the TMS scheme mbtiles uses.
func (p *MbtilesPacker) Save(tile maptile.Tile, data []byte) error {
	if p.txn == nil {
		tx, err := p.db.Begin()
		if err != nil {
			return err
		}
		p.txn = tx
	}

	hash := md5.Sum(data)
	tileID := hex.EncodeToString(hash[:])

	_, err := p.txn.Exec("INSERT OR REPLACE INTO images (tile_id, tile_data) VALUES (?, ?);", tileID, data)
	if err != nil {
		return err
	}

	tmsRow := uint32(1<<uint(tile.Z)) - 1 - tile.Y
	_, err = p.txn.Exec("INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?);",
		tile.Z, tile.X, tmsRow, tileID)
	if err != nil {
		return err
	}

	p.batchCount++
	if p.batchCount%mbtilesBatchSize == 0 {
		if err := p.txn.Commit(); err != nil {
			return err
		}
		p.txn = nil
	}

	return nil
}

// AssignMetadata writes the name/format rows plus the spatial envelope
// from a TileSetMetadata.
func (p *MbtilesPacker) AssignMetadata(name string, meta TileSetMetadata) error {
	if p.txn != nil {
		if err := p.txn.Commit(); err != nil {
			return err
		}
		p.txn = nil
	}

	center := fmt.Sprintf("%f,%f,%d",
		(meta.West+meta.East)/2.0,
		(meta.South+meta.North)/2.0,
		meta.MinZoom)

	rows := map[string]string{
		"name":    name,
		"format":  p.format,
		"bounds":  fmt.Sprintf("%f,%f,%f,%f", meta.West, meta.South, meta.East, meta.North),
		"center":  center,
		"minzoom": strconv.Itoa(meta.MinZoom),
		"maxzoom": strconv.Itoa(meta.MaxZoom),
		"type":    "overlay",
	}

	for k, v := range rows {
		_, err := p.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?);", k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close commits any open transaction and releases the database. Safe to
// call more than once.
func (p *MbtilesPacker) Close() error {
	var err error
	if p.txn != nil {
		err = p.txn.Commit()
		p.txn = nil
	}
	if p.db != nil {
		if err2 := p.db.Close(); err2 != nil {
			err = err2
		}
		p.db = nil
	}
	return err
}

type treeTile struct {
	tile maptile.Tile
	path string
	ext  string
}

// PackTileDirectory reads an XYZ tile tree (as produced by the imagery
// stage) into a new mbtiles archive at dsn. Metadata comes from the
// tiles.json sidecar when present, otherwise from the tiles themselves.
func PackTileDirectory(tileDir, dsn, name string, showProgress bool) error {
	tiles, err := collectTree(tileDir)
	if err != nil {
		return err
	}
	if len(tiles) == 0 {
		return fmt.Errorf("no tiles found under %s", tileDir)
	}

	packer, err := NewMbtilesPacker(dsn)
	if err != nil {
		return fmt.Errorf("create mbtiles archive: %w", err)
	}
	defer packer.Close()

	packer.format = strings.TrimPrefix(tiles[0].ext, ".")

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(tiles)), "packing tiles")
	}

	for _, t := range tiles {
		data, err := os.ReadFile(t.path)
		if err != nil {
			return fmt.Errorf("read tile %s: %w", t.path, err)
		}
		if err := packer.Save(t.tile, data); err != nil {
			return fmt.Errorf("save tile %d/%d/%d: %w", t.tile.Z, t.tile.X, t.tile.Y, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	meta, err := readTileSetMetadata(filepath.Join(tileDir, MetadataFilename))
	if err != nil {
		meta = metadataFromTiles(tiles)
	}

	if err := packer.AssignMetadata(name, meta); err != nil {
		return fmt.Errorf("assign metadata: %w", err)
	}
	return packer.Close()
}

func collectTree(tileDir string) ([]treeTile, error) {
	entries, err := os.ReadDir(tileDir)
	if err != nil {
		return nil, fmt.Errorf("read tile dir: %w", err)
	}

	var tiles []treeTile
	for _, zEntry := range entries {
		if !zEntry.IsDir() {
			continue
		}
		z, ok := zoomFromName(zEntry.Name())
		if !ok {
			continue
		}

		zDir := filepath.Join(tileDir, zEntry.Name())
		xEntries, err := os.ReadDir(zDir)
		if err != nil {
			return nil, err
		}

		for _, xEntry := range xEntries {
			if !xEntry.IsDir() {
				continue
			}
			x, err := strconv.ParseUint(xEntry.Name(), 10, 32)
			if err != nil {
				continue
			}

			xDir := filepath.Join(zDir, xEntry.Name())
			yEntries, err := os.ReadDir(xDir)
			if err != nil {
				return nil, err
			}

			for _, yEntry := range yEntries {
				ext := filepath.Ext(yEntry.Name())
				y, err := strconv.ParseUint(strings.TrimSuffix(yEntry.Name(), ext), 10, 32)
				if err != nil {
					continue
				}

				tiles = append(tiles, treeTile{
					tile: maptile.New(uint32(x), uint32(y), maptile.Zoom(z)),
					path: filepath.Join(xDir, yEntry.Name()),
					ext:  ext,
				})
			}
		}
	}

	return tiles, nil
}

func readTileSetMetadata(path string) (TileSetMetadata, error) {
	var meta TileSetMetadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse %s: %w", path, err)
	}
	return meta, nil
}

// metadataFromTiles derives the envelope by unioning every tile's bound,
// for trees that carry no tiles.json.
func metadataFromTiles(tiles []treeTile) TileSetMetadata {
	bound := tiles[0].tile.Bound()
	minZoom := int(tiles[0].tile.Z)
	maxZoom := minZoom

	for _, t := range tiles[1:] {
		bound = bound.Union(t.tile.Bound())
		if z := int(t.tile.Z); z < minZoom {
			minZoom = z
		} else if z > maxZoom {
			maxZoom = z
		}
	}

	return TileSetMetadata{
		West:    bound.Min.X(),
		South:   bound.Min.Y(),
		East:    bound.Max.X(),
		North:   bound.Max.Y(),
		MinZoom: minZoom,
		MaxZoom: maxZoom,
	}
}
