package engine

import (
	"math"
	"math/rand"
)

// ValidLags returns the lags in {1..nLevel} usable in variable-lag mode:
// every lag except the non-trivial divisors of nLevel. A lag that divides
// the level produces trials readable at two different lags at once (for
// nLevel=6, a lag-2 match is also a plausible lag-6 echo), so those are
// excluded. 1 and nLevel itself always remain.
func ValidLags(nLevel int) []int {
	lags := make([]int, 0, nLevel)
	for lag := 1; lag <= nLevel; lag++ {
		if lag > 1 && lag < nLevel && nLevel%lag == 0 {
			continue
		}
		lags = append(lags, lag)
	}
	return lags
}

// SampleLag draws one lag from ValidLags(nLevel), weighted exponentially
// toward larger lags: weight e^rank where rank is the index into the
// ascending list. The fat tail toward high lags is deliberate.
func SampleLag(nLevel int, rng *rand.Rand) int {
	lags := ValidLags(nLevel)
	if len(lags) == 1 {
		return lags[0]
	}

	total := 0.0
	weights := make([]float64, len(lags))
	for i := range lags {
		weights[i] = math.Exp(float64(i))
		total += weights[i]
	}

	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return lags[i]
		}
	}
	return lags[len(lags)-1]
}
