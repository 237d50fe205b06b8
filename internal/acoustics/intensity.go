package acoustics

import "math"

// IntensityParams configures the intensity contour.
type IntensityParams struct {
	MinPitch     float64
	SubtractMean bool
}

// referencePressure is the auditory threshold (20 µPa) squared.
const referencePressure = 4e-10

// intensityContour returns the dB SPL value of every frame of a Kaiser-20
// windowed power average. Windows are 3.2 periods of MinPitch long and step by
// a quarter of that.
func intensityContour(sig Signal, p IntensityParams) []float64 {
	fs := sig.SampleRate
	window := 3.2 / p.MinPitch
	step := 0.8 / p.MinPitch
	count, first := frameLayout(sig.Duration(), window, step)
	if count == 0 {
		return nil
	}
	winLen := int(math.Round(window * fs))
	if winLen < 1 {
		return nil
	}
	w := kaiserWindow(winLen, 20)
	var sumW float64
	for _, v := range w {
		sumW += v
	}

	values := make([]float64, 0, count)
	for i := range count {
		t := first + float64(i)*step
		seg := frameAt(sig.Samples, t*fs, winLen)
		var m float64
		if p.SubtractMean {
			m = mean(seg)
		}
		var acc float64
		for j, v := range seg {
			d := v - m
			acc += w[j] * d * d
		}
		power := acc / sumW
		if power <= 0 {
			values = append(values, -300)
			continue
		}
		values = append(values, 10*math.Log10(power/referencePressure))
	}
	return values
}
