package engine

import (
	"math"
	"math/rand"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

// Radii perturbations stay inside this band regardless of threshold size.
const (
	radiusClampMin = 0.1
	radiusClampMax = 1.0
)

// Assigner turns a freshly generated stimulus into a finalized trial:
// per enabled modality it independently decides match, lure or foil, copies
// or perturbs the value n trials back accordingly, and tracks how many true
// matches each modality has presented.
type Assigner struct {
	rng         *rand.Rand
	settings    models.SessionSettings
	matchCounts map[models.Modality]int
}

func NewAssigner(settings models.SessionSettings, rng *rand.Rand) *Assigner {
	return &Assigner{
		rng:         rng,
		settings:    settings,
		matchCounts: make(map[models.Modality]int),
	}
}

// MatchCounts returns a copy of the per-modality true-match totals so far.
func (a *Assigner) MatchCounts() map[models.Modality]int {
	out := make(map[models.Modality]int, len(a.matchCounts))
	for m, c := range a.matchCounts {
		out[m] = c
	}
	return out
}

// Assign finalizes the event for trial index with lag n. During ramp-up
// (index < lag) every modality stays a foil and is never a potential match.
func (a *Assigner) Assign(index, lag int, history []models.NBackEvent, stim models.Stimulus) models.NBackEvent {
	ev := models.NBackEvent{
		Index:    index,
		Lag:      lag,
		Stimulus: stim.Clone(),
		IsMatch:  make(map[models.Modality]bool, len(a.settings.Modalities)),
	}

	if index < lag {
		for _, m := range a.settings.Modalities {
			ev.IsMatch[m] = false
		}
		return ev
	}

	target := history[index-lag]

	for _, m := range a.settings.Modalities {
		ev.IsMatch[m] = false

		r := a.rng.Float64()
		switch {
		case r < a.settings.MatchRate:
			copyValue(&ev.Stimulus, target.Stimulus, m)
			ev.IsMatch[m] = true
			a.matchCounts[m]++

		case r < a.settings.MatchRate+a.settings.LureRate:
			a.perturb(&ev.Stimulus, target.Stimulus, m)
			// A trial carries at most one designated lure label even when
			// several modalities were independently perturbed.
			if ev.LureType == "" {
				ev.LureType = m
			}

		default:
			// foil: keep the freshly generated value
		}
	}

	return ev
}

// copyValue copies one modality's value verbatim from src into dst.
func copyValue(dst *models.Stimulus, src models.Stimulus, m models.Modality) {
	switch m {
	case models.ModalitySpatial:
		dst.Cell = src.Cell
	case models.ModalityAudio:
		dst.Frequency = src.Frequency
	case models.ModalityColor:
		dst.Hues = src.Hues
	case models.ModalityShape:
		dst.Radii = make([]float64, len(src.Radii))
		copy(dst.Radii, src.Radii)
	}
}

// perturb writes a near-miss of the target value into dst: the target
// shifted by exactly one threshold step in a random direction.
func (a *Assigner) perturb(dst *models.Stimulus, target models.Stimulus, m models.Modality) {
	applyLure(dst, target, m, a.settings.Thresholds.Get(m), a.settings, a.rng)
}

// applyLure perturbs one modality of target by exactly one threshold step
// and writes the result into dst. Shared between in-session lure assignment
// and the calibration probe construction.
func applyLure(dst *models.Stimulus, target models.Stimulus, m models.Modality, threshold float64, settings models.SessionSettings, rng *rand.Rand) {
	switch m {
	case models.ModalitySpatial:
		dst.Cell = adjacentCell(target.Cell, settings.GridRows, settings.GridCols, rng)
	case models.ModalityAudio:
		dst.Frequency = perturbFrequency(target.Frequency, threshold, rng)
	case models.ModalityColor:
		if settings.SingleHue {
			dst.Hues = perturbSingleHue(target.Hues, threshold, rng)
		} else {
			dst.Hues = perturbHues(target.Hues, threshold, rng)
		}
	case models.ModalityShape:
		dst.Radii = perturbRadii(target.Radii, threshold, rng)
	}
}

// adjacentCell moves one grid step to a random in-bounds neighbour. When no
// neighbour is in bounds the perturbation silently degrades to the target
// cell itself.
func adjacentCell(cell models.GridCell, rows, cols int, rng *rand.Rand) models.GridCell {
	var neighbours []models.GridCell
	for _, step := range []models.GridCell{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}} {
		next := models.GridCell{Row: cell.Row + step.Row, Col: cell.Col + step.Col}
		if next.Row >= 0 && next.Row < rows && next.Col >= 0 && next.Col < cols {
			neighbours = append(neighbours, next)
		}
	}
	if len(neighbours) == 0 {
		return cell
	}
	return neighbours[rng.Intn(len(neighbours))]
}

// perturbFrequency shifts a frequency by the threshold in cents, up or down.
func perturbFrequency(freq, cents float64, rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		cents = -cents
	}
	return freq * math.Pow(2, cents/1200)
}

// perturbHues shifts two of the three slots in opposite directions so the
// pattern's mean hue is preserved.
func perturbHues(hues [3]float64, degrees float64, rng *rand.Rand) [3]float64 {
	up := rng.Intn(3)
	down := rng.Intn(2)
	if down >= up {
		down++ // second pick from the remaining two slots
	}

	out := hues
	out[up] = wrapHue(out[up] + degrees)
	out[down] = wrapHue(out[down] - degrees)
	return out
}

// perturbSingleHue shifts a flat single-hue pattern by the threshold in one
// random direction, keeping all three slots equal.
func perturbSingleHue(hues [3]float64, degrees float64, rng *rand.Rand) [3]float64 {
	if rng.Intn(2) == 0 {
		degrees = -degrees
	}
	h := wrapHue(hues[0] + degrees)
	return [3]float64{h, h, h}
}

// perturbRadii shifts one random vertex radius by the threshold, clamped.
func perturbRadii(radii []float64, threshold float64, rng *rand.Rand) []float64 {
	out := make([]float64, len(radii))
	copy(out, radii)
	if len(out) == 0 {
		return out
	}

	i := rng.Intn(len(out))
	if rng.Intn(2) == 0 {
		threshold = -threshold
	}
	out[i] = math.Min(radiusClampMax, math.Max(radiusClampMin, out[i]+threshold))
	return out
}
