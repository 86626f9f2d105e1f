package db

import (
	"context"
	"errors"
)

// Store errors
var (
	ErrNotFound = errors.New("song not found")
	ErrExists   = errors.New("song already exists")
	ErrClosed   = errors.New("store is closed")
)

// Storage is the interface for song storage.
// MemStore, MongoStore and PostgresStore implement it.
type Storage interface {
	// Ping probes the backing store
	Ping(ctx context.Context) error

	// Count returns the number of songs
	Count(ctx context.Context) (int64, error)

	// List returns every song in insertion order
	List(ctx context.Context) ([]Song, error)

	// Get returns the song with the given id or ErrNotFound
	Get(ctx context.Context, id int64) (Song, error)

	// Create inserts the song if no song has its id.
	// Returns ErrExists without modifying anything otherwise.
	Create(ctx context.Context, song Song) (Song, error)

	// Update merges patch into the song with the given id or returns ErrNotFound
	Update(ctx context.Context, id int64, patch Song) (Song, error)

	// Delete removes the song with the given id or returns ErrNotFound
	Delete(ctx context.Context, id int64) error

	// Reseed drops every song and inserts songs in order
	Reseed(ctx context.Context, songs []Song) (int, error)

	// Close releases the store connection
	Close(ctx context.Context) error
}

// Ensure all backends implement Storage
var _ Storage = (*MemStore)(nil)
var _ Storage = (*MongoStore)(nil)
var _ Storage = (*PostgresStore)(nil)

// songID extracts the id a store keys a song by
func songID(song Song) (int64, error) {
	id, ok := song.ID()
	if !ok {
		return 0, ErrMissingID
	}
	if id < 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
