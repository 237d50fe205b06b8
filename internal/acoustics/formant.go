package acoustics

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// FormantParams configures Burg LPC formant estimation.
type FormantParams struct {
	MaxFormant      float64
	Count           int
	WindowLength    float64
	PreEmphasisFrom float64
}

// formantsAt returns up to p.Count formant frequencies, ascending, for the
// analysis frame centred on t. The signal is resampled to twice MaxFormant,
// pre-emphasized and Gaussian windowed over 2*WindowLength before an LPC fit
// of order 2*Count. Poles are the eigenvalues of the predictor's companion
// matrix.
func formantsAt(sig Signal, t float64, p FormantParams) []float64 {
	newRate := 2 * p.MaxFormant
	physical := 2 * p.WindowLength
	if sig.Duration() < physical || p.Count <= 0 {
		return nil
	}
	from := t - physical/2
	if from < 0 {
		from = 0
	}
	if from+physical > sig.Duration() {
		from = sig.Duration() - physical
	}
	seg := resample(sig.Samples, sig.SampleRate, newRate, from-1/newRate, physical+1/newRate)
	if len(seg) < 2 {
		return nil
	}

	alpha := math.Exp(-2 * math.Pi * p.PreEmphasisFrom / newRate)
	frame := make([]float64, len(seg)-1)
	for i := range frame {
		frame[i] = seg[i+1] - alpha*seg[i]
	}
	w := gaussianWindow(len(frame))
	for i := range frame {
		frame[i] *= w[i]
	}

	coeffs, ok := burg(frame, 2*p.Count)
	if !ok {
		return nil
	}
	roots, ok := polynomialRoots(coeffs)
	if !ok {
		return nil
	}

	nyquist := newRate / 2
	var freqs []float64
	for _, z := range roots {
		if imag(z) <= 0 {
			continue
		}
		if cmplx.Abs(z) > 1 {
			z = 1 / cmplx.Conj(z)
		}
		f := cmplx.Phase(z) * newRate / (2 * math.Pi)
		if f > 50 && f < nyquist-50 {
			freqs = append(freqs, f)
		}
	}
	sort.Float64s(freqs)
	if len(freqs) > p.Count {
		freqs = freqs[:p.Count]
	}
	return freqs
}

// burg fits order linear-prediction coefficients d so that
// x[n] ≈ sum_k d[k] x[n-1-k].
func burg(x []float64, order int) ([]float64, bool) {
	n := len(x)
	if n <= order+1 {
		return nil, false
	}
	d := make([]float64, order)
	wkm := make([]float64, order)
	wk1 := make([]float64, n)
	wk2 := make([]float64, n)
	copy(wk1, x[:n-1])
	copy(wk2, x[1:])

	for k := 1; k <= order; k++ {
		var num, denom float64
		for j := 0; j < n-k; j++ {
			num += wk1[j] * wk2[j]
			denom += wk1[j]*wk1[j] + wk2[j]*wk2[j]
		}
		if denom == 0 {
			return nil, false
		}
		d[k-1] = 2 * num / denom
		for i := 1; i < k; i++ {
			d[i-1] = wkm[i-1] - d[k-1]*wkm[k-i-1]
		}
		if k == order {
			break
		}
		copy(wkm[:k], d[:k])
		for j := 0; j < n-k-1; j++ {
			wk1[j] -= wkm[k-1] * wk2[j]
			wk2[j] = wk2[j+1] - wkm[k-1]*wk1[j+1]
		}
	}
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return d, true
}

// polynomialRoots returns the roots of z^m - d[0] z^(m-1) - ... - d[m-1].
func polynomialRoots(d []float64) ([]complex128, bool) {
	m := len(d)
	if m == 0 {
		return nil, false
	}
	companion := mat.NewDense(m, m, nil)
	for j, v := range d {
		companion.Set(0, j, v)
	}
	for i := 1; i < m; i++ {
		companion.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return nil, false
	}
	return eig.Values(nil), true
}

// resample evaluates x (sampled at rate) on a grid of newRate starting at
// from seconds and spanning length seconds, using a Hann-tapered sinc kernel
// that also low-passes when downsampling.
func resample(x []float64, rate, newRate, from, length float64) []float64 {
	const depth = 50
	n := int(math.Round(length * newRate))
	if n <= 0 {
		return nil
	}
	cutoff := math.Min(1, newRate/rate)
	half := depth / cutoff
	out := make([]float64, n)
	for i := range out {
		pos := (from + float64(i)/newRate) * rate
		lo := int(math.Ceil(pos - half))
		hi := int(math.Floor(pos + half))
		if lo < 0 {
			lo = 0
		}
		if hi > len(x)-1 {
			hi = len(x) - 1
		}
		var acc float64
		for k := lo; k <= hi; k++ {
			dist := pos - float64(k)
			taper := 0.5 + 0.5*math.Cos(math.Pi*dist/half)
			acc += x[k] * cutoff * sinc(cutoff*dist) * taper
		}
		out[i] = acc
	}
	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
