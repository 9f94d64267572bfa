package analyze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/model"
)

// flexYear decodes a release year that older dataset files stored as a
// JSON number, a numeric string, "" or "Unknown". Anything non-numeric
// decodes to zero.
type flexYear int

func (y *flexYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*y = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*y = 0
			return nil
		}
		*y = flexYear(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = flexYear(n)
	return nil
}

// Legacy dataset shape: a JSON object keyed by artist name, each album a
// map keyed by album title, optionally wrapped in a {"dataset": ...}
// envelope by interrupted-run progress files.
type legacySong struct {
	Title       string `json:"title"`
	TrackNumber int    `json:"track_number"`
	Lyrics      string `json:"lyrics"`
	Language    string `json:"language"`
}

type legacyAlbum struct {
	Name        string       `json:"name"`
	ReleaseYear flexYear     `json:"release_year"`
	AlbumType   string       `json:"album_type"`
	Songs       []legacySong `json:"songs"`
}

type legacyArtist struct {
	Name   string                 `json:"name"`
	Albums map[string]legacyAlbum `json:"albums"`
}

// Load reads one or more dataset files and merges them into a single
// dataset, in argument order. With a single path any read or decode error
// is fatal; with several, unreadable files are logged and skipped as long
// as at least one loads.
func Load(paths []string, logger *zap.Logger) (model.Dataset, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files given")
	}
	var merged model.Dataset
	loaded := 0
	for _, path := range paths {
		ds, err := loadFile(path)
		if err != nil {
			if len(paths) == 1 {
				return nil, err
			}
			logger.Warn("Skipping unreadable dataset file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		logger.Info("Loaded dataset file",
			zap.String("path", path),
			zap.Int("artists", len(ds)),
		)
		merged = append(merged, ds...)
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("none of the %d dataset files could be loaded", len(paths))
	}
	return merged, nil
}

func loadFile(path string) (model.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}
	if trimmed[0] == '[' {
		var ds model.Dataset
		if err := json.Unmarshal(trimmed, &ds); err != nil {
			return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
		}
		return ds, nil
	}
	ds, err := decodeLegacy(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}
	return ds, nil
}

// decodeLegacy handles object-shaped files, both the bare artist map and
// the {"dataset": ...} envelope.
func decodeLegacy(raw []byte) (model.Dataset, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if inner, ok := envelope["dataset"]; ok {
		raw = inner
	}
	var artists map[string]legacyArtist
	if err := json.Unmarshal(raw, &artists); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(artists))
	for name := range artists {
		names = append(names, name)
	}
	sort.Strings(names)

	ds := make(model.Dataset, 0, len(artists))
	for _, name := range names {
		la := artists[name]
		artist := model.Artist{Name: la.Name}
		if artist.Name == "" {
			artist.Name = name
		}

		albumTitles := make([]string, 0, len(la.Albums))
		for title := range la.Albums {
			albumTitles = append(albumTitles, title)
		}
		sort.Strings(albumTitles)

		for _, title := range albumTitles {
			lal := la.Albums[title]
			album := model.Album{
				Title:       lal.Name,
				Type:        lal.AlbumType,
				ReleaseYear: int(lal.ReleaseYear),
			}
			if album.Title == "" {
				album.Title = title
			}
			for _, ls := range lal.Songs {
				album.Songs = append(album.Songs, model.Song{
					Title:    ls.Title,
					TrackNo:  ls.TrackNumber,
					Lyrics:   ls.Lyrics,
					Language: ls.Language,
				})
			}
			artist.Albums = append(artist.Albums, album)
		}
		ds = append(ds, artist)
	}
	return ds, nil
}
