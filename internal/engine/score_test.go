package engine

import (
	"testing"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func matchEvent(index, lag int, matches map[models.Modality]bool) *models.NBackEvent {
	return &models.NBackEvent{Index: index, Lag: lag, IsMatch: matches}
}

func TestRespondClassification(t *testing.T) {
	tracker := NewTracker()
	ev := matchEvent(3, 2, map[models.Modality]bool{
		models.ModalityAudio:   true,
		models.ModalitySpatial: false,
	})

	if !tracker.Respond(ev, models.ModalityAudio) {
		t.Fatal("response to true match not scored")
	}
	if !tracker.Respond(ev, models.ModalitySpatial) {
		t.Fatal("response to non-match not scored")
	}

	score := tracker.Score()
	if score.Hits[models.ModalityAudio] != 1 {
		t.Errorf("hits = %d, want 1", score.Hits[models.ModalityAudio])
	}
	if score.FalseAlarms[models.ModalitySpatial] != 1 {
		t.Errorf("false alarms = %d, want 1", score.FalseAlarms[models.ModalitySpatial])
	}
}

func TestRespondAtMostOncePerPair(t *testing.T) {
	tracker := NewTracker()
	ev := matchEvent(3, 2, map[models.Modality]bool{models.ModalityAudio: true})

	if !tracker.Respond(ev, models.ModalityAudio) {
		t.Fatal("first response not scored")
	}
	for i := 0; i < 5; i++ {
		if tracker.Respond(ev, models.ModalityAudio) {
			t.Fatal("duplicate response was scored")
		}
	}

	score := tracker.Score()
	total := score.TotalHits() + score.TotalMisses() + score.TotalFalseAlarms()
	if total != 1 {
		t.Errorf("repeated presses produced %d outcomes, want 1", total)
	}
}

func TestRespondIgnoredCases(t *testing.T) {
	tracker := NewTracker()

	if tracker.Respond(nil, models.ModalityAudio) {
		t.Error("response before any trial was scored")
	}

	// index < lag: the trial cannot be a match yet.
	ramp := matchEvent(1, 2, map[models.Modality]bool{models.ModalityAudio: false})
	if tracker.Respond(ramp, models.ModalityAudio) {
		t.Error("response during ramp-up was scored")
	}

	score := tracker.Score()
	if score.TotalHits()+score.TotalMisses()+score.TotalFalseAlarms() != 0 {
		t.Error("ignored responses mutated the score")
	}
}

func TestResolveMisses(t *testing.T) {
	tracker := NewTracker()
	ev := matchEvent(4, 2, map[models.Modality]bool{
		models.ModalityAudio:   true,
		models.ModalityColor:   true,
		models.ModalitySpatial: false,
	})

	// Answer one of the two matches, let the other expire.
	tracker.Respond(ev, models.ModalityAudio)
	tracker.ResolveMisses(ev)

	score := tracker.Score()
	if score.Hits[models.ModalityAudio] != 1 {
		t.Errorf("audio hits = %d, want 1", score.Hits[models.ModalityAudio])
	}
	if score.Misses[models.ModalityColor] != 1 {
		t.Errorf("color misses = %d, want 1", score.Misses[models.ModalityColor])
	}
	if score.Misses[models.ModalitySpatial] != 0 {
		t.Error("non-match counted as miss")
	}

	// A late key press for the expired match must not double count.
	if tracker.Respond(ev, models.ModalityColor) {
		t.Error("late response after miss resolution was scored")
	}
}

func TestEveryOpportunityCountedOnce(t *testing.T) {
	// Simulate a full session's worth of decisions and check the
	// accounting invariant: hits + misses + falseAlarms per modality never
	// exceeds the eligible trials for that modality.
	tracker := NewTracker()
	const lag = 2
	const trials = 20
	eligible := 0

	for i := 0; i < trials; i++ {
		ev := matchEvent(i, lag, map[models.Modality]bool{models.ModalityAudio: i%3 == 0 && i >= lag})
		if i >= lag {
			eligible++
		}
		if i%2 == 0 {
			tracker.Respond(ev, models.ModalityAudio)
			tracker.Respond(ev, models.ModalityAudio) // duplicate press
		}
		tracker.ResolveMisses(ev)
	}

	score := tracker.Score()
	m := models.ModalityAudio
	counted := score.Hits[m] + score.Misses[m] + score.FalseAlarms[m]
	if counted > eligible {
		t.Errorf("counted %d outcomes for %d eligible trials", counted, eligible)
	}
}
