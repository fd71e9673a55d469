package models

// Score accumulates response outcomes per modality. Every (trial, modality)
// decision lands in exactly one counter; the tracker's dedup set guarantees
// repeated key presses for the same opportunity are not double counted.
type Score struct {
	Hits        map[Modality]int `json:"hits"`
	Misses      map[Modality]int `json:"misses"`
	FalseAlarms map[Modality]int `json:"falseAlarms"`
}

// NewScore returns a Score with all counter maps allocated.
func NewScore() Score {
	return Score{
		Hits:        make(map[Modality]int),
		Misses:      make(map[Modality]int),
		FalseAlarms: make(map[Modality]int),
	}
}

// Clone returns an independent copy of the counters.
func (s Score) Clone() Score {
	out := NewScore()
	for m, v := range s.Hits {
		out.Hits[m] = v
	}
	for m, v := range s.Misses {
		out.Misses[m] = v
	}
	for m, v := range s.FalseAlarms {
		out.FalseAlarms[m] = v
	}
	return out
}

// TotalHits sums hits across modalities.
func (s Score) TotalHits() int {
	total := 0
	for _, v := range s.Hits {
		total += v
	}
	return total
}

// TotalMisses sums misses across modalities.
func (s Score) TotalMisses() int {
	total := 0
	for _, v := range s.Misses {
		total += v
	}
	return total
}

// TotalFalseAlarms sums false alarms across modalities.
func (s Score) TotalFalseAlarms() int {
	total := 0
	for _, v := range s.FalseAlarms {
		total += v
	}
	return total
}

// Accuracy is hits / (matches + falseAlarms) for one modality, where
// matches = hits + misses. A zero denominator means the modality presented
// nothing to detect and nothing was wrongly detected, which counts as 1.0.
func (s Score) Accuracy(m Modality) float64 {
	denom := s.Hits[m] + s.Misses[m] + s.FalseAlarms[m]
	if denom == 0 {
		return 1.0
	}
	return float64(s.Hits[m]) / float64(denom)
}

// OverallAccuracy applies the same formula across all modalities combined.
func (s Score) OverallAccuracy() float64 {
	denom := s.TotalHits() + s.TotalMisses() + s.TotalFalseAlarms()
	if denom == 0 {
		return 1.0
	}
	return float64(s.TotalHits()) / float64(denom)
}
