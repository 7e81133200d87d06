package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/fittrack/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileCols = `user_id, height_cm, current_weight_kg, age, activity_level, gender, created_at, updated_at`

// Get returns the user's profile, or nil if none has been saved.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	var age sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM user_profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.HeightCM, &p.CurrentWeightKG, &age, &p.ActivityLevel, &p.Gender, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	return &p, nil
}

// Upsert inserts or replaces the profile keyed by p.UserID.
func (s *ProfileStore) Upsert(ctx context.Context, p model.Profile) (*model.Profile, error) {
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, height_cm, current_weight_kg, age, activity_level, gender, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   height_cm = excluded.height_cm,
		   current_weight_kg = excluded.current_weight_kg,
		   age = excluded.age,
		   activity_level = excluded.activity_level,
		   gender = excluded.gender,
		   updated_at = excluded.updated_at`,
		p.UserID, p.HeightCM, p.CurrentWeightKG, age, p.ActivityLevel, p.Gender, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return s.Get(ctx, p.UserID)
}
