package model

import "time"

type SnapshotStatus string

const (
	SnapshotPending   SnapshotStatus = "pending"
	SnapshotUploading SnapshotStatus = "uploading"
	SnapshotCompleted SnapshotStatus = "completed"
	SnapshotFailed    SnapshotStatus = "failed"
)

// Snapshot records one encrypted copy of the database uploaded to object
// storage.
type Snapshot struct {
	ID           string         `json:"id"`
	S3Key        string         `json:"s3_key"`
	SizeBytes    int64          `json:"size_bytes"`
	Status       SnapshotStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
