package engine

import (
	"github.com/scottshadow56/Precision-N-back/internal/models"
)

type responseKey struct {
	index    int
	modality models.Modality
}

// Tracker classifies responses against a trial's ground truth and
// accumulates the running score. Each (trial, modality) opportunity is
// scored at most once; the dedup set swallows repeated key presses.
type Tracker struct {
	score     models.Score
	responded map[responseKey]bool
}

func NewTracker() *Tracker {
	return &Tracker{
		score:     models.NewScore(),
		responded: make(map[responseKey]bool),
	}
}

// Respond classifies a "this is a match" response for the given trial.
// It reports whether the response was scored; it is ignored when the event
// is nil (no trial yet), when the trial is still inside its own ramp-up
// (index < lag, so it cannot be a match), or when this (trial, modality)
// pair already has a recorded response.
func (t *Tracker) Respond(ev *models.NBackEvent, m models.Modality) bool {
	if ev == nil {
		return false
	}
	if ev.Index < ev.Lag {
		return false
	}

	key := responseKey{index: ev.Index, modality: m}
	if t.responded[key] {
		return false
	}
	t.responded[key] = true

	if ev.IsMatch[m] {
		t.score.Hits[m]++
	} else {
		t.score.FalseAlarms[m]++
	}
	return true
}

// ResolveMisses turns every unanswered true match on ev into a miss. The
// scheduler calls this once the response window has closed, before the next
// trial is generated, so stale unanswered matches are never silently
// dropped. Marking the pair as responded also voids any late key press.
func (t *Tracker) ResolveMisses(ev *models.NBackEvent) {
	if ev == nil {
		return
	}
	for m, isMatch := range ev.IsMatch {
		if !isMatch {
			continue
		}
		key := responseKey{index: ev.Index, modality: m}
		if t.responded[key] {
			continue
		}
		t.responded[key] = true
		t.score.Misses[m]++
	}
}

// Score returns a copy of the accumulated counters.
func (t *Tracker) Score() models.Score {
	return t.score.Clone()
}
