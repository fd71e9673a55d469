package models

// GridCell is a discrete position on the spatial grid.
type GridCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Stimulus carries one value per modality for a single trial. Values for
// disabled modalities are left at their zero value and never inspected.
type Stimulus struct {
	Cell      GridCell   `json:"cell"`
	Frequency float64    `json:"frequency"` // Hz
	Hues      [3]float64 `json:"hues"`      // degrees, sorted ascending
	Radii     []float64  `json:"radii"`     // vertex radii in [0.1, 1.0]
}

// Clone returns a deep copy. Radii is the only reference-typed field.
func (s Stimulus) Clone() Stimulus {
	out := s
	if s.Radii != nil {
		out.Radii = make([]float64, len(s.Radii))
		copy(out.Radii, s.Radii)
	}
	return out
}

// NBackEvent is a finalized trial: the stimulus plus the ground truth the
// score tracker classifies responses against.
type NBackEvent struct {
	Index    int               `json:"index"` // trial index, 0-based
	Lag      int               `json:"lag"`   // n used for this trial
	Stimulus Stimulus          `json:"stimulus"`
	IsMatch  map[Modality]bool `json:"isMatch"`
	LureType Modality          `json:"lureType,omitempty"` // at most one per trial, "" if none
}
