package engine

import (
	"github.com/scottshadow56/Precision-N-back/internal/models"
)

// Post-session adaptation applies the staircase step rule to the stored
// thresholds based on session accuracy: strong sessions tighten the
// discrimination requirement, weak ones loosen it.
const (
	adaptTightenAbove = 0.8
	adaptLoosenBelow  = 0.5
)

// AdaptThresholds returns an adjusted copy of the session thresholds for the
// enabled modalities. Under AdaptPerModality each modality steps on its own
// accuracy; under AdaptUniform every enabled modality steps on the overall
// accuracy. Accuracy in the middle band leaves the threshold alone, and no
// step ever pushes below the modality floor.
func AdaptThresholds(settings models.SessionSettings, score models.Score) models.Thresholds {
	out := settings.Thresholds.Clone()
	overall := score.OverallAccuracy()

	for _, m := range settings.Modalities {
		accuracy := overall
		if settings.AdaptPolicy == models.AdaptPerModality {
			accuracy = score.Accuracy(m)
		}

		value := out.Get(m)
		switch {
		case accuracy >= adaptTightenAbove:
			value *= stepDown
		case accuracy < adaptLoosenBelow:
			value *= stepUp
		}

		if floor := models.ThresholdFloor(m); value < floor {
			value = floor
		}
		out[m] = value
	}

	return out
}
