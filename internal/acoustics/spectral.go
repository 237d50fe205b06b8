package acoustics

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

type spectralShape struct {
	Centroid  float64
	Bandwidth float64
	Rolloff   float64
}

// spectrum computes power-weighted centroid, spread and roll-off from one FFT
// of the whole signal, zero-padded to a power of two. A silent signal yields
// NaN for all three.
func spectrum(sig Signal, rolloffFraction float64) spectralShape {
	undefined := spectralShape{Centroid: math.NaN(), Bandwidth: math.NaN(), Rolloff: math.NaN()}
	if len(sig.Samples) == 0 {
		return undefined
	}
	n := nextPow2(len(sig.Samples))
	padded := make([]float64, n)
	copy(padded, sig.Samples)
	coeff := fourier.NewFFT(n).Coefficients(nil, padded)

	binWidth := sig.SampleRate / float64(n)
	power := make([]float64, len(coeff))
	var total, weighted float64
	for k, c := range coeff {
		power[k] = real(c)*real(c) + imag(c)*imag(c)
		total += power[k]
		weighted += float64(k) * binWidth * power[k]
	}
	if total == 0 {
		return undefined
	}
	centroid := weighted / total

	var spread, cumulative float64
	rolloff := math.NaN()
	for k, pw := range power {
		f := float64(k) * binWidth
		spread += (f - centroid) * (f - centroid) * pw
		cumulative += pw
		if math.IsNaN(rolloff) && cumulative >= rolloffFraction*total {
			rolloff = f
		}
	}
	return spectralShape{
		Centroid:  centroid,
		Bandwidth: math.Sqrt(spread / total),
		Rolloff:   rolloff,
	}
}

// zeroCrossingRate counts strict sign changes between adjacent samples per
// second of audio.
func zeroCrossingRate(sig Signal) float64 {
	duration := sig.Duration()
	if duration == 0 {
		return math.NaN()
	}
	var crossings int
	for i := 0; i+1 < len(sig.Samples); i++ {
		if sig.Samples[i]*sig.Samples[i+1] < 0 {
			crossings++
		}
	}
	return float64(crossings) / duration
}
