// Package catalog loads the tab-separated song catalog. The catalog is read
// once at startup and is read-only for the lifetime of the process, so it is
// safe for concurrent use without locking.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/rs/zerolog/log"
)

// Catalog is an ordered, immutable list of songs with an id index.
type Catalog struct {
	songs []models.Song
	index map[string]int
}

// column identifies which Song field a header cell maps to.
type column int

const (
	colIgnored column = iota
	colID
	colName
	colArtist
	colAlbumArtist
	colAlbum
	colYear
	colGenre
	colVocal
	colURL
)

// headerAliases maps normalised header names to song fields.
var headerAliases = map[string]column{
	"id":          colID,
	"title":       colName,
	"name":        colName,
	"artist":      colArtist,
	"albumartist": colAlbumArtist,
	"album":       colAlbum,
	"year":        colYear,
	"genre":       colGenre,
	"vocal":       colVocal,
	"url":         colURL,
	"link":        colURL,
}

// Load opens the catalog file at path and parses it.
//
// Example:
//
//	songs, err := catalog.Load(cfg.Catalog.Path)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load song catalog")
//	}
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("songs", c.Len()).Msg("Song catalog loaded")
	return c, nil
}

// Parse reads a tab-separated catalog. The first row is the header; columns
// are matched by name, so their order does not matter. Id and Title are
// required columns, unknown columns are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]column, len(header))
	seen := make(map[column]bool)
	for i, name := range header {
		col := headerAliases[normalise(name)]
		columns[i] = col
		seen[col] = true
	}
	if !seen[colID] {
		return nil, fmt.Errorf("catalog header has no Id column")
	}
	if !seen[colName] {
		return nil, fmt.Errorf("catalog header has no Title column")
	}

	c := &Catalog{index: make(map[string]int)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		song := buildSong(columns, record)
		if song.ID == "" {
			log.Warn().Int("line", line).Msg("Skipping catalog row without id")
			continue
		}
		if _, dup := c.index[song.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate song id %q", line, song.ID)
		}

		c.index[song.ID] = len(c.songs)
		c.songs = append(c.songs, song)
	}

	return c, nil
}

// New builds a catalog from songs already in memory, preserving their order.
// Used by tests and tools; duplicate ids are rejected.
func New(songs []models.Song) (*Catalog, error) {
	c := &Catalog{
		songs: make([]models.Song, 0, len(songs)),
		index: make(map[string]int, len(songs)),
	}
	for _, song := range songs {
		if song.ID == "" {
			return nil, fmt.Errorf("song without id")
		}
		if _, dup := c.index[song.ID]; dup {
			return nil, fmt.Errorf("duplicate song id %q", song.ID)
		}
		c.index[song.ID] = len(c.songs)
		c.songs = append(c.songs, song)
	}
	return c, nil
}

// Songs returns the catalog in file order. The slice is a copy.
func (c *Catalog) Songs() []models.Song {
	out := make([]models.Song, len(c.songs))
	copy(out, c.songs)
	return out
}

// Lookup returns the song with the given id.
func (c *Catalog) Lookup(id string) (models.Song, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Song{}, false
	}
	return c.songs[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.songs)
}

func buildSong(columns []column, record []string) models.Song {
	var song models.Song
	for i, value := range record {
		if i >= len(columns) {
			break
		}
		value = strings.TrimSpace(value)
		switch columns[i] {
		case colID:
			song.ID = value
		case colName:
			song.Name = value
		case colArtist:
			song.Artist = value
		case colAlbumArtist:
			song.AlbumArtist = value
		case colAlbum:
			song.Album = value
		case colYear:
			song.Year = value
		case colGenre:
			song.Genre = value
		case colVocal:
			song.Vocal = value
		case colURL:
			song.URL = value
		}
	}
	return song
}

// normalise lowercases a header cell and strips spaces, underscores and
// dashes, so "Album Artist", "album_artist" and "AlbumArtist" all match.
func normalise(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
