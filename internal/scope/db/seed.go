package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

//go:embed data/songs.json
var bundledSongs []byte

// ErrInvalidSeed is returned for seed files that are not an array of songs
var ErrInvalidSeed = errors.New("invalid seed dataset")

// LoadSeed reads a seed dataset from path, or the bundled dataset when path is empty
func LoadSeed(path string) ([]Song, error) {
	if path == "" {
		return ParseSeed(bundledSongs)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses a JSON array of song objects.
// Every element needs a non-negative integer id and ids must be unique.
func ParseSeed(data []byte) ([]Song, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidSeed)
	}

	var (
		songs   []Song
		seen    = make(map[int64]struct{})
		itemErr error
	)
	gjson.ParseBytes(data).ForEach(func(_, value gjson.Result) bool {
		song, err := ParseSong([]byte(value.Raw))
		if err != nil {
			itemErr = fmt.Errorf("%w: element %d: %v", ErrInvalidSeed, len(songs), err)
			return false
		}
		id, _ := song.ID()
		if _, dup := seen[id]; dup {
			itemErr = fmt.Errorf("%w: duplicate id %d", ErrInvalidSeed, id)
			return false
		}
		seen[id] = struct{}{}
		songs = append(songs, song)
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}

	return songs, nil
}

// Seed loads the dataset at path and replaces the store contents with it
func Seed(ctx context.Context, store Storage, path string) (int, error) {
	songs, err := LoadSeed(path)
	if err != nil {
		return 0, err
	}
	return store.Reseed(ctx, songs)
}
