// Package backup uploads encrypted snapshots of the SQLite database to
// S3-compatible storage and restores them.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/dukerupert/fittrack/internal/model"
	"github.com/dukerupert/fittrack/internal/store"
)

// KeyPrefix is where snapshot objects live in the bucket.
const KeyPrefix = "snapshots/"

var (
	ErrDisabled         = errors.New("snapshots not configured: S3 credentials missing")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds snapshot manager configuration. A zero Interval or an empty
// Passphrase turns off scheduled snapshots; RunNow still works.
type Config struct {
	S3            S3Config
	Passphrase    string
	Interval      time.Duration
	RetentionDays int
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State        State      `json:"state"`
	LastSnapshot *time.Time `json:"last_snapshot,omitempty"`
	Error        string     `json:"error,omitempty"`
	InProgress   bool       `json:"in_progress"`
}

// StatusCallback is called whenever the manager state changes.
type StatusCallback func(Status)

type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	db        *sql.DB
	snapshots *store.SnapshotStore
	client    s3Client
	logger    *slog.Logger

	// run serializes snapshot runs.
	run sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, snapshots *store.SnapshotStore, logger *slog.Logger, callback StatusCallback) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:       cfg,
		db:        db,
		snapshots: snapshots,
		callback:  callback,
		logger:    logger.With("component", "backup"),
		status:    Status{State: StateDisabled},
	}
	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// UpdateS3Config swaps the storage target.
func (m *Manager) UpdateS3Config(s3cfg S3Config) {
	m.mu.Lock()
	m.cfg.S3 = s3cfg
	if s3cfg.complete() {
		m.client = newS3Client(s3cfg)
		m.status.State = StateIdle
	} else {
		m.client = nil
		m.status.State = StateDisabled
	}
	status := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(status)
	}
}

// Start runs a snapshot every cfg.Interval until ctx is done or Stop is
// called. It does nothing when disabled or unscheduled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 || m.cfg.Passphrase == "" || m.done != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.scheduled(ctx)
			}
		}
	}()
}

// Stop gracefully stops the schedule.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) scheduled(ctx context.Context) {
	m.mu.RLock()
	passphrase := m.cfg.Passphrase
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if _, err := m.RunNow(ctx, passphrase); err != nil {
		m.logger.Error("scheduled snapshot failed", "error", err)
	}
	if retention <= 0 {
		retention = 30
	}
	if err := m.Cleanup(ctx, retention); err != nil {
		m.logger.Error("snapshot cleanup failed", "error", err)
	}
}

func (m *Manager) target() (s3Client, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.cfg.S3.Bucket
}

// RunNow copies the live database with VACUUM INTO, seals it with
// passphrase and uploads it under KeyPrefix.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (*model.Snapshot, error) {
	if passphrase == "" {
		return nil, errors.New("snapshot passphrase is required")
	}
	client, bucket := m.target()
	if client == nil {
		return nil, ErrDisabled
	}

	m.run.Lock()
	defer m.run.Unlock()

	m.setStatus(Status{State: StateRunning, InProgress: true})

	key := KeyPrefix + time.Now().UTC().Format("2006-01-02T150405.000000Z") + ".db.enc"
	snap, err := m.snapshots.Create(ctx, key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create snapshot record: %w", err)
	}

	fail := func(step string, err error) (*model.Snapshot, error) {
		m.snapshots.UpdateStatus(ctx, snap.ID, model.SnapshotFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
		m.logger.Error("snapshot failed", "snapshot_id", snap.ID, "step", step, "error", err)
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	raw, err := m.copyDatabase(ctx)
	if err != nil {
		return fail("copy database", err)
	}

	sealed, err := Seal(raw, passphrase)
	if err != nil {
		return fail("encrypt", err)
	}

	m.snapshots.UpdateStatus(ctx, snap.ID, model.SnapshotUploading, "")
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.snapshots.MarkCompleted(ctx, snap.ID, int64(len(sealed))); err != nil {
		return fail("record completion", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastSnapshot: &now})
	m.logger.Info("snapshot uploaded", "snapshot_id", snap.ID, "key", key, "bytes", len(sealed))

	return m.snapshots.GetByID(ctx, snap.ID)
}

func (m *Manager) copyDatabase(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "fittrack-snapshot-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	return os.ReadFile(path)
}

// List returns the most recent snapshot records.
func (m *Manager) List(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.snapshots.List(ctx, limit)
}

// Restore downloads snapshot id, decrypts it, checks its integrity and
// writes it to dst. The live database is never touched; swapping dst into
// place is left to the operator.
func (m *Manager) Restore(ctx context.Context, id, passphrase, dst string) error {
	client, bucket := m.target()
	if client == nil {
		return ErrDisabled
	}

	snap, err := m.snapshots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return ErrSnapshotNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(snap.S3Key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	plain, err := Open(sealed, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt snapshot: %w", err)
	}

	tmp := dst + ".partial"
	if err := os.WriteFile(tmp, plain, 0600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	if err := checkIntegrity(ctx, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move restored db: %w", err)
	}

	m.logger.Info("snapshot restored", "snapshot_id", id, "path", dst)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Cleanup deletes snapshots older than the retention period, both the
// records and the uploaded objects.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) error {
	client, bucket := m.target()
	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	keys, err := m.snapshots.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("delete old snapshots: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete snapshot object failed", "key", key, "error", err)
		}
	}
	return nil
}
