package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/fittrack/internal/database"
	"github.com/dukerupert/fittrack/internal/model"
)

func setupSnapshotTestDB(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSnapshotStore(db)
}

func TestSnapshotLifecycle(t *testing.T) {
	ss := setupSnapshotTestDB(t)
	ctx := context.Background()

	snap, err := ss.Create(ctx, "snapshots/2024-01-15T120000Z.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Status != model.SnapshotPending {
		t.Errorf("status = %q, want pending", snap.Status)
	}

	if err := ss.UpdateStatus(ctx, snap.ID, model.SnapshotFailed, "upload refused"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := ss.GetByID(ctx, snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.SnapshotFailed || got.ErrorMessage != "upload refused" {
		t.Errorf("snapshot = %+v", got)
	}

	if err := ss.MarkCompleted(ctx, snap.ID, 4096); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ = ss.GetByID(ctx, snap.ID)
	if got.Status != model.SnapshotCompleted || got.SizeBytes != 4096 || got.CompletedAt == nil {
		t.Errorf("snapshot = %+v", got)
	}
	if got.ErrorMessage != "" {
		t.Errorf("error message = %q, want cleared", got.ErrorMessage)
	}

	latest, err := ss.LatestCompleted(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != snap.ID {
		t.Errorf("latest = %+v, want %s", latest, snap.ID)
	}
}

func TestSnapshotGetMissing(t *testing.T) {
	ss := setupSnapshotTestDB(t)

	got, err := ss.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil snapshot")
	}
}

func TestSnapshotListNewestFirst(t *testing.T) {
	ss := setupSnapshotTestDB(t)
	ctx := context.Background()

	ss.Create(ctx, "snapshots/a.db.enc")
	ss.Create(ctx, "snapshots/b.db.enc")
	ss.Create(ctx, "snapshots/c.db.enc")

	list, err := ss.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].S3Key != "snapshots/c.db.enc" || list[1].S3Key != "snapshots/b.db.enc" {
		t.Errorf("order = %q, %q", list[0].S3Key, list[1].S3Key)
	}
}

func TestSnapshotDeleteOlderThan(t *testing.T) {
	ss := setupSnapshotTestDB(t)
	ctx := context.Background()

	old, _ := ss.Create(ctx, "snapshots/old.db.enc")
	ss.db.Exec(`UPDATE snapshots SET created_at = ? WHERE id = ?`, time.Now().UTC().AddDate(0, 0, -40), old.ID)
	ss.Create(ctx, "snapshots/new.db.enc")

	keys, err := ss.DeleteOlderThan(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "snapshots/old.db.enc" {
		t.Errorf("deleted keys = %v", keys)
	}

	list, _ := ss.List(ctx, 10)
	if len(list) != 1 || list[0].S3Key != "snapshots/new.db.enc" {
		t.Errorf("remaining = %+v", list)
	}
}
