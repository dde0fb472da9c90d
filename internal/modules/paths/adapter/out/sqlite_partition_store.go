package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"

	_ "modernc.org/sqlite"
)

// SQLitePartitionStore keeps one row per user holding that user's saved
// paths as a JSON document. The whole partition is written atomically on
// every save, which is what makes the local floor survive interleaved
// remote failures.
type SQLitePartitionStore struct {
	db *sql.DB
}

var _ pathsout.PartitionStore = (*SQLitePartitionStore)(nil)

func NewSQLitePartitionStore(dbPath string) (*SQLitePartitionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLitePartitionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLitePartitionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS partitions (
  user_id TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create partitions table: %w", err)
	}
	return nil
}

func (s *SQLitePartitionStore) Load(ctx context.Context, userID string) ([]domain.LearningPath, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM partitions WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load partition %q: %w", userID, err)
	}
	var paths []domain.LearningPath
	if err := json.Unmarshal(payload, &paths); err != nil {
		return nil, fmt.Errorf("decode partition %q: %w", userID, err)
	}
	for i := range paths {
		paths[i].SanitizeCompletion()
	}
	return paths, nil
}

func (s *SQLitePartitionStore) Save(ctx context.Context, userID string, paths []domain.LearningPath) error {
	if paths == nil {
		paths = []domain.LearningPath{}
	}
	payload, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode partition %q: %w", userID, err)
	}
	const stmt = `
INSERT INTO partitions (user_id, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  payload=excluded.payload,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, userID, payload, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save partition %q: %w", userID, err)
	}
	return nil
}

func (s *SQLitePartitionStore) Close() error {
	return s.db.Close()
}
