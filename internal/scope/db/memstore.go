package db

import (
	"context"
	"sync"
)

// MemStore is a thread-safe in-memory song store
type MemStore struct {
	mu     sync.RWMutex
	songs  map[int64]Song
	order  []int64 // insertion order
	closed bool
}

// NewMemStore creates a new empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		songs: make(map[int64]Song),
	}
}

// Ping reports whether the store is open
func (m *MemStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Count returns the number of songs in the store
func (m *MemStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.songs)), nil
}

// List returns copies of all songs in insertion order
func (m *MemStore) List(_ context.Context) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Song, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.songs[id].Clone())
	}
	return result, nil
}

// Get retrieves a song by id
func (m *MemStore) Get(_ context.Context, id int64) (Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	song, ok := m.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return song.Clone(), nil
}

// Create inserts a song unless its id is taken
func (m *MemStore) Create(_ context.Context, song Song) (Song, error) {
	id, err := songID(song)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if _, ok := m.songs[id]; ok {
		return nil, ErrExists
	}

	stored := song.WithObjectID()
	m.songs[id] = stored
	m.order = append(m.order, id)
	return stored.Clone(), nil
}

// Update merges patch into an existing song
func (m *MemStore) Update(_ context.Context, id int64, patch Song) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	song, ok := m.songs[id]
	if !ok {
		return nil, ErrNotFound
	}

	merged := song.Merge(patch)
	m.songs[id] = merged
	return merged.Clone(), nil
}

// Delete removes a song from the store
func (m *MemStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.songs[id]; !ok {
		return ErrNotFound
	}

	delete(m.songs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reseed replaces the store contents with songs
func (m *MemStore) Reseed(_ context.Context, songs []Song) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	m.songs = make(map[int64]Song, len(songs))
	m.order = make([]int64, 0, len(songs))
	for _, song := range songs {
		id, err := songID(song)
		if err != nil {
			return len(m.order), err
		}
		if _, ok := m.songs[id]; ok {
			return len(m.order), ErrExists
		}
		m.songs[id] = song.WithObjectID()
		m.order = append(m.order, id)
	}
	return len(m.order), nil
}

// Close marks the store closed
func (m *MemStore) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
