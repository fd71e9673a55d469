package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// SessionRecord is the immutable snapshot taken at session end: the settings
// used, the final score, derived accuracy, duration and per-modality match
// counts. Created once by the session-end handler and never mutated. Aborted
// sessions produce no record.
type SessionRecord struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index"`
	User   User `gorm:"foreignKey:UserID"`

	NLevel      int
	TrialCount  int
	Modalities  pq.StringArray `gorm:"type:text[]"`
	Hits        int
	Misses      int
	FalseAlarms int
	Accuracy    float64
	DurationMs  int64

	// Per-modality breakdowns and the full settings snapshot, for later
	// analysis without schema churn.
	ScoreDetail json.RawMessage `gorm:"type:jsonb"`
	MatchCounts json.RawMessage `gorm:"type:jsonb"`
	Settings    json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time
}

// UserThreshold stores one calibrated just-noticeable difference per
// (user, modality). Calibration runs update rows individually, so a partial
// calibration leaves the other modalities untouched.
type UserThreshold struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_modality,unique"`
	Modality  string `gorm:"index:idx_user_modality,unique"`
	Value     float64
	UpdatedAt time.Time
}
