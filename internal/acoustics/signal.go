package acoustics

// Signal is mono audio as float samples, nominally in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate float64
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / s.SampleRate
}

// peakAbs returns the largest absolute sample value in x.
func peakAbs(x []float64) float64 {
	var peak float64
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// frameLayout returns the number of analysis frames and the centre time of the
// first frame for a window of windowSec stepped by stepSec, centred in the
// signal so that leftover time is split evenly at both ends.
func frameLayout(duration, windowSec, stepSec float64) (int, float64) {
	if duration < windowSec || stepSec <= 0 {
		return 0, 0
	}
	n := int((duration-windowSec)/stepSec) + 1
	first := (duration - float64(n-1)*stepSec) / 2
	return n, first
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// parabolicPeak refines a local maximum at index i of y using its neighbours,
// returning the fractional position and interpolated height.
func parabolicPeak(y []float64, i int) (float64, float64) {
	if i <= 0 || i >= len(y)-1 {
		return float64(i), y[i]
	}
	dr := 0.5 * (y[i+1] - y[i-1])
	d2r := 2*y[i] - y[i-1] - y[i+1]
	if d2r == 0 {
		return float64(i), y[i]
	}
	offset := dr / d2r
	return float64(i) + offset, y[i] + 0.5*dr*offset
}
