package models

import (
	"errors"
	"fmt"
	"time"
)

// AdaptPolicy selects how post-session difficulty adaptation is applied.
type AdaptPolicy string

const (
	// AdaptPerModality adjusts each modality's threshold from that
	// modality's own accuracy.
	AdaptPerModality AdaptPolicy = "per_modality"
	// AdaptUniform applies the overall-accuracy step to every enabled
	// modality.
	AdaptUniform AdaptPolicy = "uniform"
)

// SessionSettings is the full configuration for one training session. It is
// supplied once at session start and immutable for the session's duration;
// the engine always receives it by value.
type SessionSettings struct {
	NLevel      int     `json:"nLevel"`
	MatchRate   float64 `json:"matchRate"`
	LureRate    float64 `json:"lureRate"`
	TrialCount  int     `json:"trialCount"`
	GridRows    int     `json:"gridRows"`
	GridCols    int     `json:"gridCols"`
	VertexCount int     `json:"vertexCount"`

	Modalities []Modality `json:"modalities"`
	Thresholds Thresholds `json:"thresholds"`

	// SingleHue presents the color modality as one flat hue instead of the
	// composite three-hue pattern.
	SingleHue bool `json:"singleHue,omitempty"`

	StimulusDuration time.Duration `json:"stimulusDuration"`
	Interval         time.Duration `json:"interval"`
	VariableInterval bool          `json:"variableInterval"`
	IntervalJitter   JitterBand    `json:"intervalJitter"`
	VariableLag      bool          `json:"variableLag"`

	AdaptPolicy AdaptPolicy `json:"adaptPolicy"`
}

// JitterBand bounds the magnitude of the signed random offset applied to
// the inter-stimulus interval in variable-ISI mode.
type JitterBand struct {
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
}

// Enabled reports whether a modality participates in this session.
func (s SessionSettings) Enabled(m Modality) bool {
	for _, em := range s.Modalities {
		if em == m {
			return true
		}
	}
	return false
}

// Validate rejects configurations the engine must refuse to run.
func (s SessionSettings) Validate() error {
	if len(s.Modalities) == 0 {
		return errors.New("no enabled modalities")
	}
	for _, m := range s.Modalities {
		if !m.IsValid() {
			return fmt.Errorf("unknown modality %q", m)
		}
	}
	if s.NLevel < 1 {
		return fmt.Errorf("n level must be at least 1, got %d", s.NLevel)
	}
	if s.TrialCount < 1 {
		return fmt.Errorf("trial count must be at least 1, got %d", s.TrialCount)
	}
	if s.MatchRate < 0 || s.LureRate < 0 || s.MatchRate+s.LureRate > 1 {
		return fmt.Errorf("match rate %.2f + lure rate %.2f must stay within [0, 1]", s.MatchRate, s.LureRate)
	}
	if s.GridRows < 1 || s.GridCols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", s.GridRows, s.GridCols)
	}
	if s.Enabled(ModalityShape) && s.VertexCount < 3 {
		return fmt.Errorf("shape vertex count must be at least 3, got %d", s.VertexCount)
	}
	if s.StimulusDuration <= 0 || s.Interval <= 0 {
		return errors.New("stimulus duration and interval must be positive")
	}
	if s.VariableInterval && (s.IntervalJitter.Min < 0 || s.IntervalJitter.Max < s.IntervalJitter.Min) {
		return errors.New("interval jitter band is inverted")
	}
	return nil
}
