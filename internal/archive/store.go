package archive

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/render"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store reads and writes archived renders.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens the archive at path, creating the database and schema if needed.
func Open(path string, meta Metadata) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := writeMetadata(db, meta); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS renders (
			key TEXT PRIMARY KEY,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			grid_width INTEGER NOT NULL,
			grid_height INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			gradients TEXT NOT NULL,
			sampler TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// writeMetadata upserts the non-empty metadata fields.
func writeMetadata(db *sql.DB, meta Metadata) error {
	stmt, err := db.Prepare("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}
	return nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Put stores e under its config key, replacing any earlier render with the same key.
// A zero CreatedAt is set to the current time.
func (s *Store) Put(e Entry) error {
	if err := e.Config.Validate(); err != nil {
		return err
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("refusing to archive empty render %s", e.Key())
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	compressed, err := gzipCompress(e.Data)
	if err != nil {
		return fmt.Errorf("failed to compress render %s: %w", e.Key(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := e.Config
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO renders
			(key, width, height, grid_width, grid_height, seed, gradients, sampler, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Key(), c.Width, c.Height, c.GridWidth, c.GridHeight, c.Seed,
		string(c.Gradients), string(c.Sampler), compressed, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert render %s: %w", e.Key(), err)
	}
	return nil
}

// Get returns the decompressed image stored under key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var compressed []byte
	err := s.db.QueryRow("SELECT data FROM renders WHERE key = ?", key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query render: %w", err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress render %s: %w", key, err)
	}
	return data, nil
}

// List returns every archived render, oldest first. Data is left empty.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT width, height, grid_width, grid_height, seed, gradients, sampler, created_at
		FROM renders ORDER BY created_at, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query renders: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                  Entry
			gradients, sampler string
			createdAt          int64
		)
		c := &e.Config
		if err := rows.Scan(&c.Width, &c.Height, &c.GridWidth, &c.GridHeight, &c.Seed, &gradients, &sampler, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan render row: %w", err)
		}
		c.Gradients = render.GradientKind(gradients)
		c.Sampler = render.SamplerKind(sampler)
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating renders: %w", err)
	}
	return entries, nil
}

// Metadata reads the archive metadata.
func (s *Store) Metadata() (Metadata, error) {
	rows, err := s.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return Metadata{
		Name:    values["name"],
		Format:  values["format"],
		Version: values["version"],
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
