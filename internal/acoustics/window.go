package acoustics

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*(float64(i)+0.5)/float64(n))
	}
	return w
}

// gaussianWindow is the edge-zeroed Gaussian used for formant analysis.
func gaussianWindow(n int) []float64 {
	w := make([]float64, n)
	mid := 0.5 * float64(n-1)
	edge := math.Exp(-12)
	span := float64(n + 1)
	for i := range w {
		d := float64(i) - mid
		w[i] = (math.Exp(-48*d*d/(span*span)) - edge) / (1 - edge)
	}
	return w
}

func kaiserWindow(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	denom := besselI0(beta)
	for i := range w {
		r := 2*float64(i)/float64(n-1) - 1
		w[i] = besselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) / denom
	}
	return w
}

// besselI0 is the zeroth-order modified Bessel function of the first kind.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 500; k++ {
		term *= half / float64(k)
		sq := term * term
		sum += sq
		if sq < sum*1e-17 {
			break
		}
	}
	return sum
}

// autocorrelator computes linear autocorrelations of fixed-length frames via a
// zero-padded FFT.
type autocorrelator struct {
	fft   *fourier.FFT
	buf   []float64
	coeff []complex128
	out   []float64
}

func newAutocorrelator(frameLen, maxLag int) *autocorrelator {
	n := nextPow2(frameLen + maxLag + 1)
	return &autocorrelator{
		fft: fourier.NewFFT(n),
		buf: make([]float64, n),
		out: make([]float64, n),
	}
}

// compute returns lags 0..maxLag. The slice is reused by the next call.
func (a *autocorrelator) compute(frame []float64, maxLag int) []float64 {
	clear(a.buf)
	copy(a.buf, frame)
	a.coeff = a.fft.Coefficients(a.coeff, a.buf)
	for i, c := range a.coeff {
		a.coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	a.out = a.fft.Sequence(a.out, a.coeff)
	return a.out[:maxLag+1]
}
