package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func testSettings(modalities ...models.Modality) models.SessionSettings {
	return models.SessionSettings{
		NLevel:           2,
		MatchRate:        0.25,
		LureRate:         0.125,
		TrialCount:       20,
		GridRows:         3,
		GridCols:         3,
		VertexCount:      8,
		Modalities:       modalities,
		Thresholds:       models.DefaultThresholds(),
		StimulusDuration: 1500 * time.Millisecond,
		Interval:         2500 * time.Millisecond,
	}
}

func TestGenerateDomains(t *testing.T) {
	settings := testSettings(models.AllModalities...)
	gen := NewGenerator(settings, rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		stim := gen.Generate()

		if stim.Cell.Row < 0 || stim.Cell.Row >= settings.GridRows {
			t.Fatalf("row %d out of bounds", stim.Cell.Row)
		}
		if stim.Cell.Col < 0 || stim.Cell.Col >= settings.GridCols {
			t.Fatalf("col %d out of bounds", stim.Cell.Col)
		}
		if stim.Frequency < freqMin || stim.Frequency >= freqMax {
			t.Fatalf("frequency %f outside [%f, %f)", stim.Frequency, freqMin, freqMax)
		}
		if stim.Hues[0] > stim.Hues[1] || stim.Hues[1] > stim.Hues[2] {
			t.Fatalf("hues not sorted ascending: %v", stim.Hues)
		}
		for _, h := range stim.Hues {
			if h < 0 || h >= 360 {
				t.Fatalf("hue %f outside [0, 360)", h)
			}
		}
		if len(stim.Radii) != settings.VertexCount {
			t.Fatalf("got %d radii, want %d", len(stim.Radii), settings.VertexCount)
		}
		for _, r := range stim.Radii {
			if r < radiusMin || r >= radiusMax {
				t.Fatalf("radius %f outside [%f, %f)", r, radiusMin, radiusMax)
			}
		}
	}
}

func TestGenerateDisabledModalitiesStayZero(t *testing.T) {
	gen := NewGenerator(testSettings(models.ModalityAudio), rand.New(rand.NewSource(1)))

	stim := gen.Generate()
	if stim.Frequency == 0 {
		t.Error("enabled audio modality produced zero frequency")
	}
	if stim.Cell != (models.GridCell{}) {
		t.Errorf("disabled spatial modality produced cell %+v", stim.Cell)
	}
	if stim.Radii != nil {
		t.Errorf("disabled shape modality produced radii %v", stim.Radii)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	settings := testSettings(models.AllModalities...)
	a := NewGenerator(settings, rand.New(rand.NewSource(42)))
	b := NewGenerator(settings, rand.New(rand.NewSource(42)))

	for i := 0; i < 50; i++ {
		sa, sb := a.Generate(), b.Generate()
		if sa.Cell != sb.Cell || sa.Frequency != sb.Frequency || sa.Hues != sb.Hues {
			t.Fatalf("trial %d diverged: %+v vs %+v", i, sa, sb)
		}
		for j := range sa.Radii {
			if sa.Radii[j] != sb.Radii[j] {
				t.Fatalf("trial %d radius %d diverged", i, j)
			}
		}
	}
}

func TestGenerateSingleHueIsFlat(t *testing.T) {
	settings := testSettings(models.ModalityColor)
	settings.SingleHue = true
	gen := NewGenerator(settings, rand.New(rand.NewSource(2)))

	for i := 0; i < 50; i++ {
		stim := gen.Generate()
		if stim.Hues[0] != stim.Hues[1] || stim.Hues[1] != stim.Hues[2] {
			t.Fatalf("single-hue pattern not flat: %v", stim.Hues)
		}
	}
}

func TestWrapHue(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359, 359},
		{360, 0},
		{365, 5},
		{725, 5},
		{-10, 350},
	}
	for _, tt := range tests {
		if got := wrapHue(tt.in); got != tt.want {
			t.Errorf("wrapHue(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
