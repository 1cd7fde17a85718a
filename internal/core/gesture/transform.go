package gesture

import "dopamine-deck/internal/core/domain/entities"

const (
	maxRotateDeg = 10.0
	minOpacity   = 0.5
)

// Transform derives the card's visual state from its offset. It has no
// state of its own; callers recompute it on every offset change.
func Transform(offset float64) entities.RenderTransform {
	return entities.RenderTransform{
		TranslateX: offset,
		RotateDeg:  interpolate(offset, []float64{-MaxTravel, 0, MaxTravel}, []float64{-maxRotateDeg, 0, maxRotateDeg}),
		Opacity: interpolate(
			offset,
			[]float64{-MaxTravel, -SwipeThreshold, 0, SwipeThreshold, MaxTravel},
			[]float64{minOpacity, 1, 1, 1, minOpacity},
		),
	}
}

// interpolate maps x through the piecewise-linear curve (in, out), clamping
// outside the input range. in must be ascending.
func interpolate(x float64, in, out []float64) float64 {
	if x <= in[0] {
		return out[0]
	}
	last := len(in) - 1
	if x >= in[last] {
		return out[last]
	}
	for i := 1; i <= last; i++ {
		if x <= in[i] {
			t := (x - in[i-1]) / (in[i] - in[i-1])
			return out[i-1] + t*(out[i]-out[i-1])
		}
	}
	return out[last]
}
