package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/suvichaar/quotepipe/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batch_runs (
	id         TEXT PRIMARY KEY,
	ts         TEXT NOT NULL,
	batch_id   TEXT NOT NULL,
	file_id    TEXT NOT NULL,
	jsonl_file TEXT NOT NULL,
	csv_file   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'submitted',
	result_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_batch_runs_status ON batch_runs(status);
CREATE INDEX IF NOT EXISTS idx_batch_runs_batch_id ON batch_runs(batch_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, info model.TrackingInfo) (*model.BatchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_runs (id, ts, batch_id, file_id, jsonl_file, csv_file, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, info.TS, info.BatchID, info.FileID, info.JSONLFile, info.CSVFile,
		string(model.RunStatusSubmitted), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.BatchRun{
		ID:        id,
		TS:        info.TS,
		BatchID:   info.BatchID,
		FileID:    info.FileID,
		JSONLFile: info.JSONLFile,
		CSVFile:   info.CSVFile,
		Status:    model.RunStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, resultURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batch_runs SET status = ?, result_url = ?, updated_at = ? WHERE id = ?`,
		string(status), resultURL, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.BatchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ts, batch_id, file_id, jsonl_file, csv_file, status, result_url, created_at, updated_at
		 FROM batch_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error) {
	query := `SELECT id, ts, batch_id, file_id, jsonl_file, csv_file, status, result_url, created_at, updated_at
		 FROM batch_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []model.BatchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.BatchRun, error) {
	var run model.BatchRun
	var status string
	err := row.Scan(&run.ID, &run.TS, &run.BatchID, &run.FileID, &run.JSONLFile,
		&run.CSVFile, &status, &run.ResultURL, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("sqlite: run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	run.Status = model.RunStatus(status)
	return &run, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
