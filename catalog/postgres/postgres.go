// Package postgres provides a catalog.Source backed by a PostgreSQL songs table.
//
// Schema:
//
//	songs(id TEXT PRIMARY KEY, title TEXT, artist TEXT,
//	      audio_features JSONB, vector JSONB)
//
// audio_features holds the raw feature record. vector holds the precomputed
// feature vector written by Upsert.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/codec"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is a PostgreSQL catalog.
type Store struct {
	db    DB
	pool  *pgxpool.Pool
	codec codec.Codec
}

var (
	_ catalog.Source   = (*Store)(nil)
	_ catalog.Searcher = (*Store)(nil)
)

// New wraps an existing connection.
func New(db DB) *Store {
	s := &Store{db: db, codec: codec.Default}
	if p, ok := db.(*pgxpool.Pool); ok {
		s.pool = p
	}
	return s
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(pool), nil
}

// Close closes the connection pool, if Store owns one.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `CREATE TABLE IF NOT EXISTS songs (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	artist         TEXT NOT NULL DEFAULT '',
	audio_features JSONB,
	vector         JSONB
)`

// Migrate creates the songs table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate songs table: %w", err)
	}
	return nil
}

// Upsert inserts or replaces tracks. The feature vector is computed and
// stored alongside the raw features.
func (s *Store) Upsert(ctx context.Context, tracks ...model.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tracks {
		feats, vec, err := s.encode(t)
		if err != nil {
			return fmt.Errorf("failed to encode track %s: %w", t.ID, err)
		}
		batch.Queue(
			`INSERT INTO songs (id, title, artist, audio_features, vector)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET title = $2, artist = $3, audio_features = $4, vector = $5`,
			t.ID, t.Title, t.Artist, feats, vec,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, t := range tracks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
		}
	}
	return nil
}

// Get returns the track with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Track, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, title, artist, audio_features, vector FROM songs WHERE id = $1`,
		id,
	)
	t, err := s.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Track{}, catalog.ErrNotFound
		}
		return model.Track{}, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return t, nil
}

// List returns every track ordered by id.
func (s *Store) List(ctx context.Context) ([]model.Track, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, artist, audio_features, vector FROM songs ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return s.collect(rows)
}

// Search returns tracks whose title or artist contains q, ignoring case,
// ordered by id. limit <= 0 means no limit.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]model.Track, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.Track{}, nil
	}

	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, title, artist, audio_features, vector FROM songs
		 WHERE title ILIKE $1 OR artist ILIKE $1
		 ORDER BY id LIMIT $2`,
		likePattern(q), lim,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	return s.collect(rows)
}

func (s *Store) collect(rows pgx.Rows) ([]model.Track, error) {
	defer rows.Close()

	tracks := []model.Track{}
	for rows.Next() {
		t, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}
	return tracks, nil
}

func (s *Store) scan(row pgx.Row) (model.Track, error) {
	var (
		t           model.Track
		feats, vect []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Artist, &feats, &vect); err != nil {
		return model.Track{}, err
	}
	if err := s.decode(&t, feats, vect); err != nil {
		return model.Track{}, err
	}
	return t, nil
}

func (s *Store) encode(t model.Track) (feats, vec []byte, err error) {
	rec := t.Features
	if rec == nil {
		rec = features.Record{}
	}
	if feats, err = s.codec.Marshal(rec); err != nil {
		return nil, nil, err
	}
	if vec, err = s.codec.Marshal(t.FeatureVector()); err != nil {
		return nil, nil, err
	}
	return feats, vec, nil
}

// decode fills t from the JSONB columns. NULL columns leave the field empty.
func (s *Store) decode(t *model.Track, feats, vect []byte) error {
	if len(feats) > 0 {
		if err := s.codec.Unmarshal(feats, &t.Features); err != nil {
			return fmt.Errorf("audio_features: %w", err)
		}
	}
	if len(vect) > 0 {
		if err := s.codec.Unmarshal(vect, &t.Vector); err != nil {
			return fmt.Errorf("vector: %w", err)
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern with LIKE wildcards in q escaped.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
