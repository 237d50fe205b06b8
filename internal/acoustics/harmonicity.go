package acoustics

import "math"

// HarmonicityParams configures cross-correlation harmonicity.
type HarmonicityParams struct {
	TimeStep         float64
	Floor            float64
	SilenceThreshold float64
	PeriodsPerWindow float64
}

// harmonicityContour returns the HNR in dB of every non-silent frame. Each
// frame correlates a window of PeriodsPerWindow floor periods with its lagged
// copy and keeps the best local maximum r; HNR = 10 log10(r / (1 - r)).
func harmonicityContour(sig Signal, p HarmonicityParams) []float64 {
	fs := sig.SampleRate
	maxLag := int(math.Ceil(fs / p.Floor))
	winLen := int(math.Round(p.PeriodsPerWindow / p.Floor * fs))
	total := winLen + maxLag
	count, first := frameLayout(sig.Duration(), float64(total)/fs, p.TimeStep)
	if count == 0 || winLen < 2 || maxLag < 3 {
		return nil
	}

	globalPeak := peakAbs(sig.Samples)
	if globalPeak == 0 {
		return nil
	}
	seg := make([]float64, total)
	r := make([]float64, maxLag+1)
	var values []float64
	for i := range count {
		t := first + float64(i)*p.TimeStep
		raw := frameAt(sig.Samples, t*fs, total)
		if len(raw) < total {
			continue
		}
		m := mean(raw)
		var localPeak float64
		for j, v := range raw {
			seg[j] = v - m
			localPeak = math.Max(localPeak, math.Abs(seg[j]))
		}
		unvoiced := math.Max(0, 2-(localPeak/globalPeak)/p.SilenceThreshold)

		a := seg[:winLen]
		var energyA float64
		for _, v := range a {
			energyA += v * v
		}
		if energyA == 0 {
			continue
		}
		for lag := 1; lag <= maxLag; lag++ {
			b := seg[lag : lag+winLen]
			var cross, energyB float64
			for j := range a {
				cross += a[j] * b[j]
				energyB += b[j] * b[j]
			}
			if energyB == 0 {
				r[lag] = 0
				continue
			}
			r[lag] = cross / math.Sqrt(energyA*energyB)
		}

		best := math.Inf(-1)
		for lag := 2; lag < maxLag; lag++ {
			if r[lag] > r[lag-1] && r[lag] >= r[lag+1] {
				_, height := parabolicPeak(r, lag)
				best = math.Max(best, height)
			}
		}
		if best <= unvoiced || best <= 0 {
			continue
		}
		values = append(values, hnrDecibels(best))
	}
	return values
}

func hnrDecibels(r float64) float64 {
	switch {
	case r <= 1e-15:
		return -150
	case r > 1-1e-15:
		return 150
	default:
		return 10 * math.Log10(r/(1-r))
	}
}
