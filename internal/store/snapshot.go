package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/fittrack/internal/model"
	"github.com/google/uuid"
)

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

const snapshotCols = `id, s3_key, size_bytes, status, error_message, completed_at, created_at`

func scanSnapshot(scanner interface{ Scan(...any) error }) (*model.Snapshot, error) {
	var s model.Snapshot
	var errMsg sql.NullString
	var completedAt sql.NullTime
	if err := scanner.Scan(&s.ID, &s.S3Key, &s.SizeBytes, &s.Status, &errMsg, &completedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ErrorMessage = errMsg.String
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}

func (s *SnapshotStore) Create(ctx context.Context, s3Key string) (*model.Snapshot, error) {
	now := time.Now().UTC()
	snap := &model.Snapshot{
		ID:        uuid.NewString(),
		S3Key:     s3Key,
		Status:    model.SnapshotPending,
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, s3_key, status, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.S3Key, snap.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotCols+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns the newest snapshots first.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotCols+` FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

func (s *SnapshotStore) UpdateStatus(ctx context.Context, id string, status model.SnapshotStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE snapshots SET status = ?, error_message = ? WHERE id = ?`,
		status, errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot status: %w", err)
	}
	return nil
}

func (s *SnapshotStore) MarkCompleted(ctx context.Context, id string, sizeBytes int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE snapshots SET status = ?, size_bytes = ?, error_message = NULL, completed_at = ? WHERE id = ?`,
		model.SnapshotCompleted, sizeBytes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark snapshot completed: %w", err)
	}
	return nil
}

// DeleteOlderThan removes snapshot rows created before the cutoff and
// returns their object keys so the caller can delete the uploads too.
func (s *SnapshotStore) DeleteOlderThan(ctx context.Context, before time.Time) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT s3_key FROM snapshots WHERE created_at < ?`, before)
	if err != nil {
		return nil, fmt.Errorf("select old snapshots: %w", err)
	}
	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan s3 key: %w", err)
		}
		keys = append(keys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE created_at < ?`, before); err != nil {
		return nil, fmt.Errorf("delete old snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return keys, nil
}

func (s *SnapshotStore) LatestCompleted(ctx context.Context) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotCols+` FROM snapshots WHERE status = ? ORDER BY completed_at DESC, rowid DESC LIMIT 1`,
		model.SnapshotCompleted,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed snapshot: %w", err)
	}
	return snap, nil
}
