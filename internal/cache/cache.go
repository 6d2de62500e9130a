// Package cache keeps a local SQLite copy of task lists keyed by client id,
// so the CLI can show recent data when offline and invalidate it when a
// notification names the client.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// Store is the SQLite-backed task cache.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens the cache database at home/cache/tasks.sqlite, creating the
// schema if needed.
func Open(home string, log zerolog.Logger) (*Store, error) {
	dbPath := filepath.Join(home, "cache", "tasks.sqlite")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, log: log}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init(ctx context.Context) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS tasks (
  task_id    INTEGER PRIMARY KEY,
  client_id  INTEGER NOT NULL,
  payload    TEXT NOT NULL,
  fetched_at INTEGER NOT NULL
);`,
		"CREATE INDEX IF NOT EXISTS tasks_client_idx ON tasks(client_id);",
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// PutTasks replaces the cached task list for a client.
func (s *Store) PutTasks(ctx context.Context, clientID int64, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE client_id = ?", clientID); err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, task := range tasks {
		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO tasks(task_id, client_id, payload, fetched_at) VALUES (?, ?, ?, ?)",
			task.TaskID, clientID, string(payload), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetTasks returns the cached task list for a client and when it was fetched.
// ok is false when nothing is cached.
func (s *Store) GetTasks(ctx context.Context, clientID int64) (tasks []models.Task, fetchedAt time.Time, ok bool, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload, fetched_at FROM tasks WHERE client_id = ? ORDER BY task_id", clientID)
	if err != nil {
		return nil, time.Time{}, false, err
	}
	defer func() { _ = rows.Close() }()

	var oldest int64
	for rows.Next() {
		var payload string
		var at int64
		if err := rows.Scan(&payload, &at); err != nil {
			return nil, time.Time{}, false, err
		}
		var task models.Task
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			s.log.Warn().Err(err).Int64("client_id", clientID).Msg("dropping undecodable cached task")
			continue
		}
		if oldest == 0 || at < oldest {
			oldest = at
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, false, err
	}
	if len(tasks) == 0 {
		return nil, time.Time{}, false, nil
	}
	return tasks, time.Unix(oldest, 0), true, nil
}

// InvalidateClient drops everything cached for a client. Called when a
// notification carries that client's id.
func (s *Store) InvalidateClient(ctx context.Context, clientID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE client_id = ?", clientID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.Debug().Int64("client_id", clientID).Int64("dropped", n).Msg("invalidated cached tasks")
	}
	return nil
}

// Purge drops the entire cache (logout).
func (s *Store) Purge(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("cache not initialized")
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks")
	return err
}
