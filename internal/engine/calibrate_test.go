package engine

import (
	"math/rand"
	"testing"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func newTestCalibrator(t *testing.T, variant StaircaseVariant) *Calibrator {
	t.Helper()
	settings := testSettings(models.ModalityAudio)
	cal, err := NewCalibrator(models.ModalityAudio, variant, settings, rand.New(rand.NewSource(11)), nil, nil)
	if err != nil {
		t.Fatalf("NewCalibrator: %v", err)
	}
	return cal
}

func answer(t *testing.T, cal *Calibrator, same bool) (bool, bool) {
	t.Helper()
	if _, err := cal.NextTrial(); err != nil {
		t.Fatalf("NextTrial: %v", err)
	}
	return cal.Answer(same)
}

func TestConvergingIncorrectRaisesMonotonically(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseConverging)

	prev := cal.Threshold()
	for !cal.Done() {
		answer(t, cal, true) // "same" is always incorrect
		if cur := cal.Threshold(); cur < prev {
			t.Fatalf("threshold decreased on incorrect answer: %f -> %f", prev, cur)
		}
		prev = cal.Threshold()
	}

	if got := cal.Threshold(); got <= models.DefaultThresholds()[models.ModalityAudio] {
		t.Errorf("threshold %f did not rise from its start", got)
	}
}

func TestConvergingCorrectLowersToFloor(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseConverging)

	prev := cal.Threshold()
	for !cal.Done() {
		answer(t, cal, false) // "different" is always correct
		if cur := cal.Threshold(); cur > prev {
			t.Fatalf("threshold increased on correct answer: %f -> %f", prev, cur)
		}
		prev = cal.Threshold()
	}

	if floor := models.ThresholdFloor(models.ModalityAudio); cal.Threshold() < floor {
		t.Errorf("threshold %f below floor %f", cal.Threshold(), floor)
	}
}

func TestConvergingRunsFixedBudget(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseConverging)

	trials := 0
	for !cal.Done() {
		answer(t, cal, false)
		trials++
		if trials > convergingBudget {
			t.Fatal("staircase exceeded its trial budget")
		}
	}
	if trials != convergingBudget {
		t.Errorf("ran %d trials, want %d", trials, convergingBudget)
	}
}

func TestAscendingStartsAtFloorAndEndsOnFirstCorrect(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseAscending)

	floor := models.ThresholdFloor(models.ModalityAudio)
	if cal.Threshold() != floor {
		t.Fatalf("starting threshold %f, want floor %f", cal.Threshold(), floor)
	}

	// Incorrect answers only rise.
	for i := 0; i < 3; i++ {
		if _, done := answer(t, cal, true); done {
			t.Fatal("run ended on incorrect answer")
		}
	}
	risen := cal.Threshold()
	if risen <= floor {
		t.Fatalf("threshold did not rise: %f", risen)
	}

	correct, done := answer(t, cal, false)
	if !correct || !done {
		t.Fatalf("correct answer should end the run (correct=%v done=%v)", correct, done)
	}
	if cal.Threshold() != risen {
		t.Errorf("accepted threshold changed on the terminal correct answer")
	}
}

func TestAscendingSafetyCap(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseAscending)

	trials := 0
	for !cal.Done() {
		answer(t, cal, true)
		trials++
		if trials > ascendingCap {
			t.Fatal("ascending staircase exceeded its safety cap")
		}
	}
	if trials != ascendingCap {
		t.Errorf("ran %d trials, want cap %d", trials, ascendingCap)
	}
}

func TestCalibratorResultIsPartial(t *testing.T) {
	var got models.Thresholds
	settings := testSettings(models.ModalityAudio, models.ModalityColor)
	cal, err := NewCalibrator(models.ModalityAudio, StaircaseAscending, settings, rand.New(rand.NewSource(12)), nil, func(partial models.Thresholds) {
		got = partial
	})
	if err != nil {
		t.Fatalf("NewCalibrator: %v", err)
	}

	answer(t, cal, false) // ends the ascending run

	if len(got) != 1 {
		t.Fatalf("partial map has %d entries, want 1: %v", len(got), got)
	}
	if _, ok := got[models.ModalityAudio]; !ok {
		t.Error("partial map missing the calibrated modality")
	}

	// Merging the partial result must not disturb other modalities.
	merged := settings.Thresholds.Merge(got)
	if merged[models.ModalityColor] != settings.Thresholds[models.ModalityColor] {
		t.Error("merge disturbed an uncalibrated modality")
	}
}

func TestCalibratorManualEnd(t *testing.T) {
	cal := newTestCalibrator(t, StaircaseConverging)
	answer(t, cal, true)

	partial := cal.End()
	if !cal.Done() {
		t.Error("End did not finish the run")
	}
	if v, ok := partial[models.ModalityAudio]; !ok || v != cal.Threshold() {
		t.Errorf("End returned %v, want current threshold %f", partial, cal.Threshold())
	}
}

func TestCalibratorRequiresEnabledModality(t *testing.T) {
	settings := testSettings(models.ModalityAudio)
	if _, err := NewCalibrator(models.ModalityShape, StaircaseConverging, settings, rand.New(rand.NewSource(1)), nil, nil); err == nil {
		t.Error("expected error for disabled modality")
	}
}
