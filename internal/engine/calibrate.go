package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

// StaircaseVariant selects the threshold step rule.
type StaircaseVariant string

const (
	// StaircaseConverging runs a fixed trial budget; correct answers tighten
	// the threshold, incorrect ones loosen it.
	StaircaseConverging StaircaseVariant = "converging"
	// StaircaseAscending starts at the modality floor and only rises; the
	// first correct answer ends calibration with the current value.
	StaircaseAscending StaircaseVariant = "ascending"
)

const (
	stepDown = 0.90
	stepUp   = 1.25

	convergingBudget = 15
	ascendingCap     = 20
)

// CalibrationTrial is one same/different probe: a base stimulus, a masking
// noise stimulus, and a probe that is always a threshold-perturbed lure of
// the base. "Same" is therefore always the wrong answer.
type CalibrationTrial struct {
	Trial int             `json:"trial"`
	Base  models.Stimulus `json:"base"`
	Mask  models.Stimulus `json:"mask"`
	Probe models.Stimulus `json:"probe"`
}

// Calibrator runs the two-alternative-forced-choice staircase for a single
// modality. Runs for different modalities are fully independent; finishing
// or abandoning a run yields a partial threshold map covering only this
// modality.
type Calibrator struct {
	mu sync.Mutex

	log       *zap.Logger
	modality  models.Modality
	variant   StaircaseVariant
	settings  models.SessionSettings
	rng       *rand.Rand
	generator *Generator

	threshold float64
	trial     int
	done      bool
	pending   bool // a trial has been presented and awaits an answer

	onComplete func(partial models.Thresholds)
}

// NewCalibrator builds a staircase for one modality. The converging variant
// starts from the session's current threshold, the ascending variant from
// the modality floor. onComplete may be nil.
func NewCalibrator(m models.Modality, variant StaircaseVariant, settings models.SessionSettings, rng *rand.Rand, log *zap.Logger, onComplete func(models.Thresholds)) (*Calibrator, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("unknown modality %q", m)
	}
	if !settings.Enabled(m) {
		return nil, fmt.Errorf("modality %q is not enabled", m)
	}
	if log == nil {
		log = zap.NewNop()
	}

	threshold := settings.Thresholds.Get(m)
	if variant == StaircaseAscending {
		threshold = models.ThresholdFloor(m)
	}

	return &Calibrator{
		log:        log,
		modality:   m,
		variant:    variant,
		settings:   settings,
		rng:        rng,
		generator:  NewGenerator(settings, rng),
		threshold:  threshold,
		onComplete: onComplete,
	}, nil
}

// NextTrial generates the next base/mask/probe triple.
func (c *Calibrator) NextTrial() (CalibrationTrial, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return CalibrationTrial{}, fmt.Errorf("calibration for %s already finished", c.modality)
	}
	if c.pending {
		return CalibrationTrial{}, fmt.Errorf("calibration trial %d still awaiting an answer", c.trial)
	}

	base := c.generator.Generate()
	mask := c.generator.Generate()
	probe := base.Clone()
	applyLure(&probe, base, c.modality, c.threshold, c.settings, c.rng)

	c.pending = true
	return CalibrationTrial{
		Trial: c.trial,
		Base:  base,
		Mask:  mask,
		Probe: probe,
	}, nil
}

// Answer scores a "same" or "different" response and applies the staircase
// step rule. The probe is a lure by construction, so "same" is always
// incorrect. It reports whether the answer was correct and whether the run
// has finished.
func (c *Calibrator) Answer(same bool) (correct, done bool) {
	c.mu.Lock()

	if c.done || !c.pending {
		done = c.done
		c.mu.Unlock()
		return false, done
	}
	c.pending = false
	c.trial++
	correct = !same

	switch c.variant {
	case StaircaseAscending:
		if correct {
			c.done = true
		} else {
			c.threshold *= stepUp
		}
		if c.trial >= ascendingCap {
			c.done = true
		}
	default: // converging
		if correct {
			c.threshold *= stepDown
		} else {
			c.threshold *= stepUp
		}
		if c.trial >= convergingBudget {
			c.done = true
		}
	}

	if floor := models.ThresholdFloor(c.modality); c.threshold < floor {
		c.threshold = floor
	}

	c.log.Debug("Calibration step",
		zap.String("modality", string(c.modality)),
		zap.Int("trial", c.trial),
		zap.Bool("correct", correct),
		zap.Float64("threshold", c.threshold),
	)

	emit := c.done
	c.mu.Unlock()

	if emit {
		c.complete()
	}
	return correct, emit
}

// End finishes the run manually with the threshold accumulated so far.
func (c *Calibrator) End() models.Thresholds {
	c.mu.Lock()
	alreadyDone := c.done
	c.done = true
	c.mu.Unlock()

	if !alreadyDone {
		c.complete()
	}
	return c.Result()
}

// Done reports whether the staircase has finished.
func (c *Calibrator) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Threshold returns the current staircase value.
func (c *Calibrator) Threshold() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// Result is the partial threshold map this run contributes: only this
// modality, leaving every other modality's threshold untouched on merge.
func (c *Calibrator) Result() models.Thresholds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.Thresholds{c.modality: c.threshold}
}

func (c *Calibrator) complete() {
	if c.onComplete != nil {
		c.onComplete(c.Result())
	}
}
