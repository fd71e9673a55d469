package engine

import (
	"math"
	"testing"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func scoreWith(m models.Modality, hits, misses, falseAlarms int) models.Score {
	s := models.NewScore()
	s.Hits[m] = hits
	s.Misses[m] = misses
	s.FalseAlarms[m] = falseAlarms
	return s
}

func TestAdaptPerModality(t *testing.T) {
	settings := testSettings(models.ModalityAudio, models.ModalityColor)
	settings.AdaptPolicy = models.AdaptPerModality

	// Audio well above the tighten bound, color well below the loosen bound.
	score := scoreWith(models.ModalityAudio, 9, 1, 0) // 0.9
	score.Hits[models.ModalityColor] = 1
	score.Misses[models.ModalityColor] = 5
	score.FalseAlarms[models.ModalityColor] = 4 // 0.1

	adapted := AdaptThresholds(settings, score)

	wantAudio := settings.Thresholds[models.ModalityAudio] * stepDown
	if math.Abs(adapted[models.ModalityAudio]-wantAudio) > 1e-9 {
		t.Errorf("audio = %f, want tightened %f", adapted[models.ModalityAudio], wantAudio)
	}
	wantColor := settings.Thresholds[models.ModalityColor] * stepUp
	if math.Abs(adapted[models.ModalityColor]-wantColor) > 1e-9 {
		t.Errorf("color = %f, want loosened %f", adapted[models.ModalityColor], wantColor)
	}
}

func TestAdaptMiddleBandHolds(t *testing.T) {
	settings := testSettings(models.ModalityAudio)
	settings.AdaptPolicy = models.AdaptPerModality

	score := scoreWith(models.ModalityAudio, 6, 2, 2) // 0.6: no change
	adapted := AdaptThresholds(settings, score)
	if adapted[models.ModalityAudio] != settings.Thresholds[models.ModalityAudio] {
		t.Errorf("mid-band accuracy moved the threshold to %f", adapted[models.ModalityAudio])
	}
}

func TestAdaptUniformStepsEveryModalityTogether(t *testing.T) {
	settings := testSettings(models.ModalityAudio, models.ModalityColor)
	settings.AdaptPolicy = models.AdaptUniform

	// Overall accuracy 0.9 even though color alone is 0.
	score := scoreWith(models.ModalityAudio, 9, 0, 0)
	score.Misses[models.ModalityColor] = 1

	adapted := AdaptThresholds(settings, score)
	for _, m := range settings.Modalities {
		want := settings.Thresholds[m] * stepDown
		if math.Abs(adapted[m]-want) > 1e-9 {
			t.Errorf("%s = %f, want %f (uniform tighten)", m, adapted[m], want)
		}
	}
}

func TestAdaptNeverBelowFloor(t *testing.T) {
	settings := testSettings(models.ModalityAudio)
	settings.AdaptPolicy = models.AdaptPerModality
	settings.Thresholds[models.ModalityAudio] = models.ThresholdFloor(models.ModalityAudio)

	score := scoreWith(models.ModalityAudio, 10, 0, 0) // tighten request
	adapted := AdaptThresholds(settings, score)
	if got, floor := adapted[models.ModalityAudio], models.ThresholdFloor(models.ModalityAudio); got != floor {
		t.Errorf("threshold %f pushed below floor %f", got, floor)
	}
}

func TestAdaptLeavesDisabledModalitiesAlone(t *testing.T) {
	settings := testSettings(models.ModalityAudio)
	settings.AdaptPolicy = models.AdaptPerModality

	score := scoreWith(models.ModalityAudio, 10, 0, 0)
	adapted := AdaptThresholds(settings, score)
	if adapted[models.ModalityShape] != settings.Thresholds[models.ModalityShape] {
		t.Errorf("disabled shape threshold changed to %f", adapted[models.ModalityShape])
	}
}
