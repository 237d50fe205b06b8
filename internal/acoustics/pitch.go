package acoustics

import "math"

// PitchParams configures the autocorrelation pitch tracker.
type PitchParams struct {
	TimeStep         float64
	Floor            float64
	Ceiling          float64
	PeriodsPerWindow float64
	VoicingThreshold float64
	SilenceThreshold float64
	OctaveCost       float64
}

// pitchFrame is one analysis frame. Frequency is 0 for unvoiced frames.
type pitchFrame struct {
	Time      float64
	Frequency float64
	Strength  float64
}

func (f pitchFrame) voiced() bool { return f.Frequency > 0 }

// trackPitch estimates F0 per frame by picking the strongest normalized
// autocorrelation peak in the allowed lag range. Each frame's autocorrelation
// is divided by the window's own autocorrelation so that periodic signals
// score close to 1 at their period.
func trackPitch(sig Signal, p PitchParams) []pitchFrame {
	fs := sig.SampleRate
	window := p.PeriodsPerWindow / p.Floor
	count, first := frameLayout(sig.Duration(), window, p.TimeStep)
	if count == 0 {
		return nil
	}
	winLen := int(math.Round(window * fs))
	minLag := int(math.Ceil(fs / p.Ceiling))
	if minLag < 2 {
		minLag = 2
	}
	maxLag := int(math.Floor(fs / p.Floor))
	if maxLag > winLen-1 {
		maxLag = winLen - 1
	}
	if winLen < 3 || maxLag <= minLag {
		return nil
	}

	hann := hannWindow(winLen)
	ac := newAutocorrelator(winLen, maxLag)
	rw := append([]float64(nil), ac.compute(hann, maxLag)...)
	for lag := maxLag; lag >= 0; lag-- {
		rw[lag] /= rw[0]
	}

	globalPeak := peakAbs(sig.Samples)
	frame := make([]float64, winLen)
	r := make([]float64, maxLag+1)
	frames := make([]pitchFrame, 0, count)
	for i := range count {
		t := first + float64(i)*p.TimeStep
		out := pitchFrame{Time: t}
		seg := frameAt(sig.Samples, t*fs, winLen)
		m := mean(seg)
		var localPeak float64
		for j, v := range seg {
			v -= m
			localPeak = math.Max(localPeak, math.Abs(v))
			frame[j] = v * hann[j]
		}
		ra := ac.compute(frame, maxLag)
		if ra[0] <= 0 || globalPeak == 0 {
			frames = append(frames, out)
			continue
		}
		for lag := range r {
			r[lag] = ra[lag] / ra[0] / rw[lag]
		}

		best := p.VoicingThreshold + math.Max(0, 2-(localPeak/globalPeak)/(p.SilenceThreshold/(1+p.VoicingThreshold)))
		for lag := minLag; lag < maxLag; lag++ {
			if !(r[lag] > r[lag-1] && r[lag] >= r[lag+1]) || r[lag] <= 0 {
				continue
			}
			pos, height := parabolicPeak(r, lag)
			height = math.Min(height, 1)
			strength := height - p.OctaveCost*math.Log2(p.Floor*pos/fs)
			if strength > best {
				best = strength
				out.Frequency = fs / pos
				out.Strength = height
			}
		}
		frames = append(frames, out)
	}
	return frames
}

// frameAt returns the n samples centred on position centre, shifted inward at
// the signal edges.
func frameAt(x []float64, centre float64, n int) []float64 {
	start := int(math.Round(centre)) - n/2
	if start+n > len(x) {
		start = len(x) - n
	}
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(x) {
		end = len(x)
	}
	return x[start:end]
}

func voicedFrequencies(frames []pitchFrame) []float64 {
	var out []float64
	for _, f := range frames {
		if f.voiced() {
			out = append(out, f.Frequency)
		}
	}
	return out
}
