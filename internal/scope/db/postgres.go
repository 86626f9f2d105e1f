package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsjohal14/songstack/internal/libs/accel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds configuration for PostgresStore
type PostgresConfig struct {
	// ConnString is the Postgres DSN
	ConnString string

	// Table is the song table name
	Table string

	// BatchSize is the insert batch size used by Reseed
	BatchSize int
}

// PostgresStore keeps songs as JSONB documents keyed by id
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string // sanitized identifier
	batch *accel.Batch
}

// NewPostgresStore connects to Postgres and creates the song table if needed
func NewPostgresStore(ctx context.Context, config PostgresConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{config.Table}.Sanitize(),
		batch: accel.NewBatch(config.BatchSize),
	}

	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			seq BIGSERIAL NOT NULL,
			id  BIGINT PRIMARY KEY,
			doc JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create song table: %w", err)
	}
	return nil
}

// Ping probes the pool
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Count returns the number of songs
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM `+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// List returns every song in insertion order
func (s *PostgresStore) List(ctx context.Context) ([]Song, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM `+s.table+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		var song Song
		if err := song.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	return songs, rows.Err()
}

// Get retrieves a song by id
func (s *PostgresStore) Get(ctx context.Context, id int64) (Song, error) {
	return s.queryDoc(ctx, `SELECT doc FROM `+s.table+` WHERE id = $1`, id)
}

// Create inserts the song unless its id is taken
func (s *PostgresStore) Create(ctx context.Context, song Song) (Song, error) {
	id, err := songID(song)
	if err != nil {
		return nil, err
	}

	doc, err := song.WithObjectID().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode song: %w", err)
	}

	created, err := s.queryDoc(ctx, `
		INSERT INTO `+s.table+` (id, doc)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO NOTHING
		RETURNING doc
	`, id, string(doc))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrExists
	}
	return created, err
}

// Update shallow-merges patch into the stored document
func (s *PostgresStore) Update(ctx context.Context, id int64, patch Song) (Song, error) {
	if len(patch) == 0 {
		return s.Get(ctx, id)
	}

	doc, err := patch.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	return s.queryDoc(ctx, `
		UPDATE `+s.table+`
		SET doc = doc || $2::jsonb
		WHERE id = $1
		RETURNING doc
	`, id, string(doc))
}

// Delete removes a song by id
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reseed truncates the table and inserts songs in one transaction
func (s *PostgresStore) Reseed(ctx context.Context, songs []Song) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE `+s.table+` RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("failed to truncate songs: %w", err)
	}

	inserted := 0
	err = accel.Each(s.batch, songs, func(chunk []Song) error {
		b := &pgx.Batch{}
		for _, song := range chunk {
			id, err := songID(song)
			if err != nil {
				return err
			}
			doc, err := song.WithObjectID().MarshalJSON()
			if err != nil {
				return fmt.Errorf("failed to encode song %d: %w", id, err)
			}
			b.Queue(`INSERT INTO `+s.table+` (id, doc) VALUES ($1, $2::jsonb)`, id, string(doc))
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return err
		}
		inserted += len(chunk)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed songs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}

// Close closes the pool
func (s *PostgresStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// queryDoc runs a single-row query returning a doc column
func (s *PostgresStore) queryDoc(ctx context.Context, sql string, args ...interface{}) (Song, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}

	var song Song
	if err := song.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return song, nil
}
