package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func TestRampUpNeverMatches(t *testing.T) {
	settings := testSettings(models.AllModalities...)
	settings.MatchRate = 1.0 // would match every trial if eligible
	rng := rand.New(rand.NewSource(3))
	gen := NewGenerator(settings, rng)
	assigner := NewAssigner(settings, rng)

	var history []models.NBackEvent
	for i := 0; i < settings.NLevel; i++ {
		ev := assigner.Assign(i, settings.NLevel, history, gen.Generate())
		history = append(history, ev)
		for m, isMatch := range ev.IsMatch {
			if isMatch {
				t.Errorf("trial %d marked %s as match during ramp-up", i, m)
			}
		}
		if ev.LureType != "" {
			t.Errorf("trial %d assigned lure %s during ramp-up", i, ev.LureType)
		}
	}
}

func TestMatchCopiesTargetValue(t *testing.T) {
	settings := testSettings(models.AllModalities...)
	settings.MatchRate = 1.0
	settings.LureRate = 0.0
	rng := rand.New(rand.NewSource(5))
	gen := NewGenerator(settings, rng)
	assigner := NewAssigner(settings, rng)

	var history []models.NBackEvent
	for i := 0; i < 10; i++ {
		ev := assigner.Assign(i, settings.NLevel, history, gen.Generate())
		history = append(history, ev)
		if i < settings.NLevel {
			continue
		}

		target := history[i-settings.NLevel]
		if !ev.IsMatch[models.ModalitySpatial] || ev.Stimulus.Cell != target.Stimulus.Cell {
			t.Errorf("trial %d spatial not copied from target", i)
		}
		if ev.Stimulus.Frequency != target.Stimulus.Frequency {
			t.Errorf("trial %d frequency not copied from target", i)
		}
		if ev.Stimulus.Hues != target.Stimulus.Hues {
			t.Errorf("trial %d hues not copied from target", i)
		}
	}

	counts := assigner.MatchCounts()
	for _, m := range settings.Modalities {
		if counts[m] != 8 {
			t.Errorf("match count for %s = %d, want 8", m, counts[m])
		}
	}
}

func TestAtMostOneLureLabel(t *testing.T) {
	settings := testSettings(models.AllModalities...)
	settings.MatchRate = 0.0
	settings.LureRate = 1.0 // every modality perturbed every eligible trial
	rng := rand.New(rand.NewSource(9))
	gen := NewGenerator(settings, rng)
	assigner := NewAssigner(settings, rng)

	var history []models.NBackEvent
	for i := 0; i < 10; i++ {
		ev := assigner.Assign(i, settings.NLevel, history, gen.Generate())
		history = append(history, ev)
		if i < settings.NLevel {
			continue
		}
		// The label always lands on the first enabled modality since all
		// of them are perturbed.
		if ev.LureType != settings.Modalities[0] {
			t.Errorf("trial %d lure label = %q, want %q", i, ev.LureType, settings.Modalities[0])
		}
		for m, isMatch := range ev.IsMatch {
			if isMatch {
				t.Errorf("trial %d marked lure as match for %s", i, m)
			}
		}
	}
}

func TestPerturbFrequency(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const cents = 50.0
	up := math.Pow(2, cents/1200)

	for i := 0; i < 100; i++ {
		got := perturbFrequency(440, cents, rng)
		ratio := got / 440
		if math.Abs(ratio-up) > 1e-9 && math.Abs(ratio-1/up) > 1e-9 {
			t.Fatalf("frequency ratio %f is not one threshold step", ratio)
		}
	}
}

func TestPerturbHuesPreservesMeanAndShiftsTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	hues := [3]float64{100, 150, 200}
	const degrees = 10.0

	for i := 0; i < 100; i++ {
		got := perturbHues(hues, degrees, rng)

		shifted := 0
		for j := range got {
			if got[j] != hues[j] {
				shifted++
			}
		}
		if shifted != 2 {
			t.Fatalf("%d slots shifted, want 2 (got %v)", shifted, got)
		}

		sumBefore := hues[0] + hues[1] + hues[2]
		sumAfter := got[0] + got[1] + got[2]
		if math.Abs(sumBefore-sumAfter) > 1e-9 {
			t.Fatalf("mean hue not preserved: %v -> %v", hues, got)
		}
	}
}

func TestPerturbSingleHueShiftsWholePattern(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	hues := [3]float64{140, 140, 140}
	const degrees = 15.0

	for i := 0; i < 100; i++ {
		got := perturbSingleHue(hues, degrees, rng)
		if got[0] != got[1] || got[1] != got[2] {
			t.Fatalf("flat pattern split apart: %v", got)
		}
		if got[0] != 125 && got[0] != 155 {
			t.Fatalf("hue %f is not one threshold step from 140", got[0])
		}
	}
}

func TestPerturbRadiiClampsAndShiftsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	radii := []float64{0.12, 0.5, 0.98}

	for i := 0; i < 100; i++ {
		got := perturbRadii(radii, 0.15, rng)
		if len(got) != len(radii) {
			t.Fatalf("length changed: %d", len(got))
		}

		shifted := 0
		for j := range got {
			if got[j] != radii[j] {
				shifted++
			}
			if got[j] < radiusClampMin || got[j] > radiusClampMax {
				t.Fatalf("radius %f escaped clamp", got[j])
			}
		}
		if shifted > 1 {
			t.Fatalf("%d radii shifted, want at most 1", shifted)
		}
	}
}

func TestAdjacentCell(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	t.Run("stays in bounds", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			cell := models.GridCell{Row: rng.Intn(3), Col: rng.Intn(3)}
			next := adjacentCell(cell, 3, 3, rng)
			if next == cell {
				t.Fatalf("cell %+v did not move on a 3x3 grid", cell)
			}
			manhattan := abs(next.Row-cell.Row) + abs(next.Col-cell.Col)
			if manhattan != 1 {
				t.Fatalf("moved %d steps from %+v to %+v", manhattan, cell, next)
			}
			if next.Row < 0 || next.Row >= 3 || next.Col < 0 || next.Col >= 3 {
				t.Fatalf("moved out of bounds to %+v", next)
			}
		}
	})

	t.Run("degrades to no-op without neighbours", func(t *testing.T) {
		cell := models.GridCell{Row: 0, Col: 0}
		if next := adjacentCell(cell, 1, 1, rng); next != cell {
			t.Errorf("1x1 grid moved to %+v", next)
		}
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
