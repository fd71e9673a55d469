// internal/repository/charts.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/scottshadow56/Precision-N-back/internal/database"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Metrics the timeline chart can plot from session_records columns. Keyed
// access keeps the SQL free of user input.
var timelineColumns = map[string]string{
	"accuracy":     "accuracy",
	"hits":         "hits::float",
	"misses":       "misses::float",
	"false_alarms": "false_alarms::float",
	"n_level":      "n_level::float",
	"duration_ms":  "duration_ms::float",
}

// TimelineMetricValid reports whether the metric key can be charted.
func TimelineMetricValid(metricKey string) bool {
	_, ok := timelineColumns[metricKey]
	return ok
}

// GetTimelineData returns one metric over a user's completed sessions in
// chronological order.
func GetTimelineData(ctx context.Context, userID uint, metricKey string) ([]TimelineDataPoint, error) {
	column, ok := timelineColumns[metricKey]
	if !ok {
		return nil, fmt.Errorf("unknown timeline metric %q", metricKey)
	}

	var data []TimelineDataPoint
	query := fmt.Sprintf(`
		SELECT created_at AS date, %s AS value
		FROM session_records
		WHERE user_id = ?
		ORDER BY created_at;
	`, column)

	err := database.DB.WithContext(ctx).Raw(query, userID).Scan(&data).Error
	return data, err
}

// ThresholdHistoryPoint pairs a calibrated threshold with its modality.
type ThresholdHistoryPoint struct {
	Modality string  `json:"modality"`
	Value    float64 `json:"value"`
}

// GetThresholdValues returns the user's current stored thresholds for the
// calibration chart.
func GetThresholdValues(ctx context.Context, userID uint) ([]ThresholdHistoryPoint, error) {
	var data []ThresholdHistoryPoint
	err := database.DB.WithContext(ctx).Raw(`
		SELECT modality, value
		FROM user_thresholds
		WHERE user_id = ?
		ORDER BY modality;
	`, userID).Scan(&data).Error
	return data, err
}
