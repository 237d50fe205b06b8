package acoustics

import "math"

// PerturbationParams configures pulse detection and the local jitter and
// shimmer measures.
type PerturbationParams struct {
	Floor           float64
	Ceiling         float64
	ShortestPeriod  float64
	LongestPeriod   float64
	PeriodFactor    float64
	AmplitudeFactor float64
}

// pulseTrain is the glottal pulses of one voiced stretch.
type pulseTrain struct {
	times      []float64
	amplitudes []float64
}

// periodicPulses places one pulse per period inside every voiced stretch of
// the pitch track. Each pulse is the waveform extremum nearest to where the
// local F0 predicts the next period to start, refined by parabolic
// interpolation.
func periodicPulses(sig Signal, frames []pitchFrame, step float64) []pulseTrain {
	fs := sig.SampleRate
	duration := sig.Duration()
	var trains []pulseTrain
	for i := 0; i < len(frames); {
		if !frames[i].voiced() {
			i++
			continue
		}
		j := i
		for j+1 < len(frames) && frames[j+1].voiced() {
			j++
		}
		run := frames[i : j+1]
		i = j + 1

		start := math.Max(0, run[0].Time-step/2)
		end := math.Min(duration, run[len(run)-1].Time+step/2)
		lo, hi := int(start*fs), int(end*fs)
		if hi > len(sig.Samples) {
			hi = len(sig.Samples)
		}
		if hi-lo < 3 {
			continue
		}
		polarity := 1.0
		if -minValue(sig.Samples[lo:hi]) > maxValue(sig.Samples[lo:hi]) {
			polarity = -1
		}
		periodAt := func(t float64) float64 {
			k := int(math.Round((t - run[0].Time) / step))
			k = max(0, min(k, len(run)-1))
			return 1 / run[k].Frequency
		}

		var train pulseTrain
		t, ok := extremum(sig.Samples, fs, start, start+periodAt(start), polarity)
		for ok && t <= end {
			train.times = append(train.times, t)
			period := periodAt(t)
			t, ok = extremum(sig.Samples, fs, t+0.8*period, math.Min(end, t+1.2*period), polarity)
		}
		if len(train.times) < 2 {
			continue
		}
		train.amplitudes = make([]float64, len(train.times)-1)
		for k := 0; k+1 < len(train.times); k++ {
			a, b := int(train.times[k]*fs), int(math.Ceil(train.times[k+1]*fs))
			if b > len(sig.Samples) {
				b = len(sig.Samples)
			}
			train.amplitudes[k] = peakAbs(sig.Samples[a:b])
		}
		trains = append(trains, train)
	}
	return trains
}

// extremum finds the polarity-adjusted maximum in [from, to] seconds.
func extremum(x []float64, fs, from, to, polarity float64) (float64, bool) {
	lo := int(math.Ceil(from * fs))
	hi := int(math.Floor(to * fs))
	if lo < 1 {
		lo = 1
	}
	if hi > len(x)-2 {
		hi = len(x) - 2
	}
	if hi < lo {
		return 0, false
	}
	best := lo
	for k := lo + 1; k <= hi; k++ {
		if polarity*x[k] > polarity*x[best] {
			best = k
		}
	}
	neighbourhood := []float64{polarity * x[best-1], polarity * x[best], polarity * x[best+1]}
	pos, _ := parabolicPeak(neighbourhood, 1)
	return (float64(best-1) + pos) / fs, true
}

// jitterLocal is the mean absolute difference of consecutive periods divided
// by the mean period. Periods outside [ShortestPeriod, LongestPeriod] and
// pairs whose ratio exceeds PeriodFactor are skipped.
func jitterLocal(trains []pulseTrain, p PerturbationParams) float64 {
	var diffSum, periodSum float64
	var pairs, periods int
	for _, train := range trains {
		prev := math.NaN()
		for k := 0; k+1 < len(train.times); k++ {
			period := train.times[k+1] - train.times[k]
			if !p.validPeriod(period) {
				prev = math.NaN()
				continue
			}
			periodSum += period
			periods++
			if !math.IsNaN(prev) && ratio(period, prev) <= p.PeriodFactor {
				diffSum += math.Abs(period - prev)
				pairs++
			}
			prev = period
		}
	}
	if pairs == 0 || periods < 2 {
		return math.NaN()
	}
	return (diffSum / float64(pairs)) / (periodSum / float64(periods))
}

// shimmerLocal is the mean absolute difference of consecutive period peak
// amplitudes divided by the mean amplitude, with the same period rules as
// jitterLocal and amplitude pairs limited by AmplitudeFactor.
func shimmerLocal(trains []pulseTrain, p PerturbationParams) float64 {
	var diffSum, ampSum float64
	var pairs, amps int
	for _, train := range trains {
		prevPeriod, prevAmp := math.NaN(), math.NaN()
		for k := 0; k+1 < len(train.times); k++ {
			period := train.times[k+1] - train.times[k]
			amp := train.amplitudes[k]
			if !p.validPeriod(period) || amp <= 0 {
				prevPeriod, prevAmp = math.NaN(), math.NaN()
				continue
			}
			ampSum += amp
			amps++
			if !math.IsNaN(prevPeriod) &&
				ratio(period, prevPeriod) <= p.PeriodFactor &&
				ratio(amp, prevAmp) <= p.AmplitudeFactor {
				diffSum += math.Abs(amp - prevAmp)
				pairs++
			}
			prevPeriod, prevAmp = period, amp
		}
	}
	if pairs == 0 || amps < 2 {
		return math.NaN()
	}
	return (diffSum / float64(pairs)) / (ampSum / float64(amps))
}

func (p PerturbationParams) validPeriod(period float64) bool {
	return period >= p.ShortestPeriod && period <= p.LongestPeriod
}

func ratio(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

func maxValue(x []float64) float64 {
	m := math.Inf(-1)
	for _, v := range x {
		m = math.Max(m, v)
	}
	return m
}

func minValue(x []float64) float64 {
	m := math.Inf(1)
	for _, v := range x {
		m = math.Min(m, v)
	}
	return m
}
