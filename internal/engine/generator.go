// Package engine implements the trial-generation and adaptive-assessment
// core: stimulus generation, match/lure assignment, the trial scheduler,
// response scoring and the calibration staircases. All randomness flows
// through an injected *rand.Rand so a fixed seed reproduces a session
// exactly.
package engine

import (
	"math/rand"
	"sort"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

const (
	freqMin = 200.0 // Hz
	freqMax = 800.0

	radiusMin = 0.6
	radiusMax = 1.0

	hueIntervalMin = 30.0 // degrees
	hueIntervalMax = 120.0
)

// Generator produces raw multi-modality stimuli, one independent uniform
// value per enabled modality. It has no side effects beyond consuming
// randomness from its source.
type Generator struct {
	rng      *rand.Rand
	settings models.SessionSettings
}

func NewGenerator(settings models.SessionSettings, rng *rand.Rand) *Generator {
	return &Generator{rng: rng, settings: settings}
}

// Generate draws one fresh stimulus. Disabled modalities keep zero values.
func (g *Generator) Generate() models.Stimulus {
	var stim models.Stimulus

	if g.settings.Enabled(models.ModalitySpatial) {
		stim.Cell = models.GridCell{
			Row: g.rng.Intn(g.settings.GridRows),
			Col: g.rng.Intn(g.settings.GridCols),
		}
	}

	if g.settings.Enabled(models.ModalityAudio) {
		stim.Frequency = freqMin + g.rng.Float64()*(freqMax-freqMin)
	}

	if g.settings.Enabled(models.ModalityColor) {
		if g.settings.SingleHue {
			h := g.rng.Float64() * 360
			stim.Hues = [3]float64{h, h, h}
		} else {
			stim.Hues = g.hueTriple()
		}
	}

	if g.settings.Enabled(models.ModalityShape) {
		stim.Radii = make([]float64, g.settings.VertexCount)
		for i := range stim.Radii {
			stim.Radii[i] = radiusMin + g.rng.Float64()*(radiusMax-radiusMin)
		}
	}

	return stim
}

// hueTriple builds a composite pattern: a random base hue plus two offsets
// at a randomized angular interval, sorted ascending.
func (g *Generator) hueTriple() [3]float64 {
	base := g.rng.Float64() * 360
	interval := hueIntervalMin + g.rng.Float64()*(hueIntervalMax-hueIntervalMin)

	hues := []float64{
		base,
		wrapHue(base + interval),
		wrapHue(base + 2*interval),
	}
	sort.Float64s(hues)

	return [3]float64{hues[0], hues[1], hues[2]}
}

func wrapHue(deg float64) float64 {
	for deg >= 360 {
		deg -= 360
	}
	for deg < 0 {
		deg += 360
	}
	return deg
}
