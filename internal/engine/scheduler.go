package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

// State is the scheduler's lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StatePresenting State = "presenting"
	StateISI        State = "isi"
	StateFinished   State = "finished"
)

// The next trial never starts before the stimulus has finished being
// visible plus this margin.
const isiFloorMargin = 50 * time.Millisecond

// Summary is emitted exactly once when a session ends, by completion or by
// quitting.
type Summary struct {
	Score       models.Score
	MatchCounts map[models.Modality]int
	Completed   bool
	Duration    time.Duration
	Accuracy    float64
}

// Callbacks are the scheduler's outward surface. OnEvent fires with
// visible=true when a stimulus is presented and visible=false when its
// window closes; OnSessionEnd fires once, terminal. Both may be nil.
type Callbacks struct {
	OnEvent      func(ev models.NBackEvent, visible bool)
	OnSessionEnd func(sum Summary)
}

// Scheduler drives the trial loop: Idle -> Presenting -> ISI -> ... ->
// Finished. All state lives behind one mutex and is mutated only by the
// self-rescheduling timer chain plus Respond/Quit; a generation counter
// checked at every timer resumption guarantees no stale tick fires after a
// quit.
type Scheduler struct {
	mu sync.Mutex

	log      *zap.Logger
	settings models.SessionSettings
	rng      *rand.Rand

	generator *Generator
	assigner  *Assigner
	tracker   *Tracker

	history    []models.NBackEvent
	state      State
	visible    bool
	pending    *time.Timer
	generation int
	startedAt  time.Time
	ended      bool

	cb Callbacks
}

// NewScheduler validates the settings and assembles a session. The random
// source is injected so a fixed seed reproduces the event stream exactly.
func NewScheduler(settings models.SessionSettings, rng *rand.Rand, log *zap.Logger, cb Callbacks) (*Scheduler, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session settings: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scheduler{
		log:       log,
		settings:  settings,
		rng:       rng,
		generator: NewGenerator(settings, rng),
		assigner:  NewAssigner(settings, rng),
		tracker:   NewTracker(),
		state:     StateIdle,
		cb:        cb,
	}, nil
}

// Start begins the trial loop. It may be called once.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started (state %s)", s.state)
	}
	s.startedAt = time.Now()
	s.log.Info("Session started",
		zap.Int("nLevel", s.settings.NLevel),
		zap.Int("trials", s.settings.TrialCount),
		zap.Int("modalities", len(s.settings.Modalities)),
	)
	s.mu.Unlock()

	s.advance(0)
	return nil
}

// Respond records a "this is a match" answer for one modality against the
// current trial. Fire-and-forget and idempotent per (trial, modality); calls
// before the first trial, during a trial's own ramp-up window, or after the
// session ended are ignored.
func (s *Scheduler) Respond(m models.Modality) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting && s.state != StateISI {
		return
	}
	if !s.settings.Enabled(m) || len(s.history) == 0 {
		return
	}

	current := &s.history[len(s.history)-1]
	if s.tracker.Respond(current, m) {
		s.log.Debug("Response scored",
			zap.String("modality", string(m)),
			zap.Int("trial", current.Index),
			zap.Bool("match", current.IsMatch[m]),
		)
	}
}

// Quit aborts the session: all pending timers are invalidated before the
// terminal summary (completed=false) is emitted, so no stale tick can fire
// afterwards.
func (s *Scheduler) Quit() {
	s.mu.Lock()
	if s.state == StateFinished {
		s.mu.Unlock()
		return
	}
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	end := s.finishLocked(false)
	s.mu.Unlock()

	if end != nil {
		end()
	}
}

// Snapshot exposes the renderer-facing view: the current event (nil before
// the first trial), the stimulus-visibility flag and progress.
func (s *Scheduler) Snapshot() (ev *models.NBackEvent, visible bool, done, total int, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		ev = &last
	}
	return ev, s.visible, len(s.history), s.settings.TrialCount, s.state
}

// advance is the tick: resolve stale misses, finish if the session is over,
// otherwise generate and present the next trial.
func (s *Scheduler) advance(gen int) {
	s.mu.Lock()
	if gen != s.generation || s.state == StateFinished {
		s.mu.Unlock()
		return
	}

	// Unanswered matches from the previous trial become misses before the
	// next trial exists, so they are never silently dropped.
	if len(s.history) > 0 {
		s.tracker.ResolveMisses(&s.history[len(s.history)-1])
	}

	if len(s.history) >= s.settings.TrialCount {
		end := s.finishLocked(true)
		s.mu.Unlock()
		if end != nil {
			end()
		}
		return
	}

	ev := s.nextTrialLocked()
	s.state = StatePresenting
	s.visible = true

	s.pending = time.AfterFunc(s.settings.StimulusDuration, func() { s.hide(gen) })
	s.mu.Unlock()

	if s.cb.OnEvent != nil {
		s.cb.OnEvent(ev, true)
	}
}

// hide closes the stimulus-visible window and arms the tick for the next
// trial after the remaining inter-stimulus interval.
func (s *Scheduler) hide(gen int) {
	s.mu.Lock()
	if gen != s.generation || s.state != StatePresenting {
		s.mu.Unlock()
		return
	}
	s.visible = false
	s.state = StateISI
	ev := s.history[len(s.history)-1]

	delay := s.intervalLocked() - s.settings.StimulusDuration
	if delay < isiFloorMargin {
		delay = isiFloorMargin
	}
	s.pending = time.AfterFunc(delay, func() { s.advance(gen) })
	s.mu.Unlock()

	if s.cb.OnEvent != nil {
		s.cb.OnEvent(ev, false)
	}
}

// nextTrialLocked generates and appends one trial. Caller holds the lock.
func (s *Scheduler) nextTrialLocked() models.NBackEvent {
	lag := s.settings.NLevel
	if s.settings.VariableLag {
		lag = SampleLag(s.settings.NLevel, s.rng)
	}

	stim := s.generator.Generate()
	ev := s.assigner.Assign(len(s.history), lag, s.history, stim)
	s.history = append(s.history, ev)

	s.log.Debug("Trial presented",
		zap.Int("trial", ev.Index),
		zap.Int("lag", ev.Lag),
		zap.String("lure", string(ev.LureType)),
	)
	return ev
}

// intervalLocked returns the onset-to-onset interval, jittered in
// variable-ISI mode by a signed offset with magnitude in the configured
// band. Caller holds the lock.
func (s *Scheduler) intervalLocked() time.Duration {
	interval := s.settings.Interval
	if !s.settings.VariableInterval {
		return interval
	}

	band := s.settings.IntervalJitter
	magnitude := band.Min
	if band.Max > band.Min {
		magnitude += time.Duration(s.rng.Int63n(int64(band.Max - band.Min)))
	}
	if s.rng.Intn(2) == 0 {
		magnitude = -magnitude
	}
	return interval + magnitude
}

// finishLocked transitions to Finished and returns the deferred callback
// emission, or nil if the session already ended. Caller holds the lock.
func (s *Scheduler) finishLocked(completed bool) func() {
	if s.ended {
		return nil
	}
	s.ended = true
	s.state = StateFinished
	s.visible = false

	score := s.tracker.Score()
	sum := Summary{
		Score:       score,
		MatchCounts: s.assigner.MatchCounts(),
		Completed:   completed,
		Duration:    time.Since(s.startedAt),
		Accuracy:    score.OverallAccuracy(),
	}

	s.log.Info("Session finished",
		zap.Bool("completed", completed),
		zap.Int("trials", len(s.history)),
		zap.Float64("accuracy", sum.Accuracy),
	)

	if s.cb.OnSessionEnd == nil {
		return func() {}
	}
	return func() { s.cb.OnSessionEnd(sum) }
}
