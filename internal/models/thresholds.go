package models

// Thresholds maps each perturbable modality to its just-noticeable
// difference: audio in cents, color in hue degrees, shape in radius
// fraction, spatial in normalized grid distance.
type Thresholds map[Modality]float64

// Per-modality staircase floors. No update may push a threshold below these.
var thresholdFloors = map[Modality]float64{
	ModalitySpatial: 0.10,
	ModalityAudio:   5.0,
	ModalityColor:   5.0,
	ModalityShape:   0.02,
}

// Starting values used when a participant has never calibrated a modality.
var thresholdDefaults = map[Modality]float64{
	ModalitySpatial: 1.0,
	ModalityAudio:   50.0,
	ModalityColor:   45.0,
	ModalityShape:   0.15,
}

// ThresholdFloor returns the minimum allowed threshold for a modality.
func ThresholdFloor(m Modality) float64 {
	return thresholdFloors[m]
}

// DefaultThresholds returns a fresh threshold map with the uncalibrated
// starting value for every modality.
func DefaultThresholds() Thresholds {
	t := make(Thresholds, len(thresholdDefaults))
	for m, v := range thresholdDefaults {
		t[m] = v
	}
	return t
}

// Clone returns an independent copy. Thresholds always flow into sessions
// by value, never by shared reference.
func (t Thresholds) Clone() Thresholds {
	out := make(Thresholds, len(t))
	for m, v := range t {
		out[m] = v
	}
	return out
}

// Merge applies a partial update: modalities present in partial replace the
// receiver's values, everything else keeps its previous threshold. Values
// are clamped to the modality floor on the way in.
func (t Thresholds) Merge(partial Thresholds) Thresholds {
	out := t.Clone()
	for m, v := range partial {
		if floor := ThresholdFloor(m); v < floor {
			v = floor
		}
		out[m] = v
	}
	return out
}

// Get returns the threshold for m, falling back to the default when the
// map has no entry (for example a modality enabled for the first time).
func (t Thresholds) Get(m Modality) float64 {
	if v, ok := t[m]; ok && v > 0 {
		return v
	}
	return thresholdDefaults[m]
}
