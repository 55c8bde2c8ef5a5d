package audio

const (
	primaryGain   = 0.5
	secondaryGain = 0.5
)

// Mix combines two mono streams with equal gain. The result has the length
// of the shorter input and every sample is clipped to [-1, 1]. A nil or
// empty secondary returns a copy of primary.
func Mix(primary, secondary []float32) []float32 {
	if len(secondary) == 0 {
		out := make([]float32, len(primary))
		copy(out, primary)
		return out
	}

	n := min(len(primary), len(secondary))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = clip(primary[i]*primaryGain + secondary[i]*secondaryGain)
	}
	return out
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

func clip(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
