package store

import (
	"context"
	"testing"

	"github.com/dukerupert/fittrack/internal/database"
)

func setupKVTestDB(t *testing.T) *KVStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewKVStore(db)
}

func allKeys(t *testing.T, kv *KVStore) map[string]string {
	t.Helper()
	rows, err := kv.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			t.Fatalf("scan key: %v", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("list keys: %v", err)
	}
	return values
}

func TestKVGetMissing(t *testing.T) {
	kv := setupKVTestDB(t)

	_, ok, err := kv.Get(context.Background(), "nonexistent_key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected missing key to report not found")
	}
}

func TestKVSetAndOverwrite(t *testing.T) {
	kv := setupKVTestDB(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	val, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if val != "two" {
		t.Errorf("k = %q, want %q", val, "two")
	}
}

func TestKVRemove(t *testing.T) {
	kv := setupKVTestDB(t)
	ctx := context.Background()

	kv.Set(ctx, "a", "1")
	kv.Set(ctx, "b", "2")
	kv.Set(ctx, "c", "3")

	if err := kv.Remove(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := kv.Remove(ctx); err != nil {
		t.Fatalf("remove nothing: %v", err)
	}

	all := allKeys(t, kv)
	if len(all) != 1 || all["c"] != "3" {
		t.Errorf("remaining = %v, want only c", all)
	}
}
