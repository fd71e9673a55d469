package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm/clause"

	"github.com/scottshadow56/Precision-N-back/internal/database"
	"github.com/scottshadow56/Precision-N-back/internal/engine"
	"github.com/scottshadow56/Precision-N-back/internal/models"
)

// SaveSessionRecord snapshots a completed session. Callers only invoke this
// for completed=true summaries; aborted sessions leave no record.
func SaveSessionRecord(ctx context.Context, userID uint, settings models.SessionSettings, sum engine.Summary) (*models.SessionRecord, error) {
	modalities := make(pq.StringArray, 0, len(settings.Modalities))
	for _, m := range settings.Modalities {
		modalities = append(modalities, string(m))
	}

	scoreDetail, err := json.Marshal(sum.Score)
	if err != nil {
		return nil, err
	}
	matchCounts, err := json.Marshal(sum.MatchCounts)
	if err != nil {
		return nil, err
	}
	settingsRaw, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	record := &models.SessionRecord{
		UserID:      userID,
		NLevel:      settings.NLevel,
		TrialCount:  settings.TrialCount,
		Modalities:  modalities,
		Hits:        sum.Score.TotalHits(),
		Misses:      sum.Score.TotalMisses(),
		FalseAlarms: sum.Score.TotalFalseAlarms(),
		Accuracy:    sum.Accuracy,
		DurationMs:  sum.Duration.Milliseconds(),
		ScoreDetail: scoreDetail,
		MatchCounts: matchCounts,
		Settings:    settingsRaw,
		CreatedAt:   time.Now(),
	}

	result := database.DB.WithContext(ctx).Create(record)
	return record, result.Error
}

// GetSessionRecords returns a user's session history, newest first.
func GetSessionRecords(ctx context.Context, userID uint, limit int) ([]models.SessionRecord, error) {
	var records []models.SessionRecord
	q := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// GetThresholds loads a user's calibrated thresholds merged over the
// defaults, so uncalibrated modalities still have usable values.
func GetThresholds(ctx context.Context, userID uint) (models.Thresholds, error) {
	var rows []models.UserThreshold
	if err := database.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	partial := make(models.Thresholds, len(rows))
	for _, row := range rows {
		partial[models.Modality(row.Modality)] = row.Value
	}
	return models.DefaultThresholds().Merge(partial), nil
}

// SaveThresholds upserts the modalities present in the partial map and
// leaves every other stored threshold untouched.
func SaveThresholds(ctx context.Context, userID uint, partial models.Thresholds) error {
	for m, value := range partial {
		if floor := models.ThresholdFloor(m); value < floor {
			value = floor
		}
		row := models.UserThreshold{
			UserID:    userID,
			Modality:  string(m),
			Value:     value,
			UpdatedAt: time.Now(),
		}
		err := database.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "modality"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
