// internal/models/presets.go
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Preset is a named settings bundle from presets.yaml. Durations are in
// milliseconds in the file and converted on load.
type Preset struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	NLevel      int      `yaml:"n_level"`
	MatchRate   float64  `yaml:"match_rate"`
	LureRate    float64  `yaml:"lure_rate"`
	TrialCount  int      `yaml:"trial_count"`
	GridRows    int      `yaml:"grid_rows"`
	GridCols    int      `yaml:"grid_cols"`
	VertexCount int      `yaml:"vertex_count"`
	SingleHue   bool     `yaml:"single_hue,omitempty"`
	Modalities  []string `yaml:"modalities"`

	StimulusDurationMs int  `yaml:"stimulus_duration_ms"`
	IntervalMs         int  `yaml:"interval_ms"`
	VariableInterval   bool `yaml:"variable_interval"`
	IntervalJitterMin  int  `yaml:"interval_jitter_min_ms,omitempty"`
	IntervalJitterMax  int  `yaml:"interval_jitter_max_ms,omitempty"`
	VariableLag        bool `yaml:"variable_lag"`
}

// PresetList holds all presets from the YAML file.
type PresetList struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads and parses the presets.yaml file.
func LoadPresets(path string) (*PresetList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var list PresetList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presets YAML: %w", err)
	}

	return &list, nil
}

// ByID finds a preset by its identifier.
func (l *PresetList) ByID(id string) (Preset, bool) {
	for _, p := range l.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Settings expands the preset into SessionSettings. Thresholds and the
// adaptation policy are supplied by the caller since they are per-user
// configuration, not part of the preset.
func (p Preset) Settings(thresholds Thresholds, policy AdaptPolicy) SessionSettings {
	modalities := make([]Modality, 0, len(p.Modalities))
	for _, m := range p.Modalities {
		modalities = append(modalities, Modality(m))
	}

	return SessionSettings{
		NLevel:           p.NLevel,
		MatchRate:        p.MatchRate,
		LureRate:         p.LureRate,
		TrialCount:       p.TrialCount,
		GridRows:         p.GridRows,
		GridCols:         p.GridCols,
		VertexCount:      p.VertexCount,
		SingleHue:        p.SingleHue,
		Modalities:       modalities,
		Thresholds:       thresholds.Clone(),
		StimulusDuration: time.Duration(p.StimulusDurationMs) * time.Millisecond,
		Interval:         time.Duration(p.IntervalMs) * time.Millisecond,
		VariableInterval: p.VariableInterval,
		IntervalJitter: JitterBand{
			Min: time.Duration(p.IntervalJitterMin) * time.Millisecond,
			Max: time.Duration(p.IntervalJitterMax) * time.Millisecond,
		},
		VariableLag: p.VariableLag,
		AdaptPolicy: policy,
	}
}
