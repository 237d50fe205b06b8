package acoustics

import (
	"context"
	"math"
)

// FeatureExtractor computes the descriptor vector for an audio file.
type FeatureExtractor interface {
	Extract(ctx context.Context, path string) (Features, error)
}

// Features is the fixed descriptor vector of one recording. Undefined values
// are NaN.
type Features struct {
	F0Mean            float64
	F0Std             float64
	IntensityMean     float64
	IntensityStd      float64
	F1                float64
	F2                float64
	F3                float64
	Jitter            float64
	Shimmer           float64
	HNR               float64
	SpectralCentroid  float64
	SpectralBandwidth float64
	SpectralRolloff   float64
	ZeroCrossingRate  float64
}

// FeatureNames lists the column names of the vector in output order.
var FeatureNames = []string{
	"F0_mean",
	"F0_std",
	"Intensity_mean",
	"Intensity_std",
	"F1",
	"F2",
	"F3",
	"Jitter",
	"Shimmer",
	"HNR",
	"SpectralCentroid",
	"SpectralBandwidth",
	"SpectralRolloff",
	"ZeroCrossingRate",
}

// Values returns the vector in FeatureNames order.
func (f Features) Values() []float64 {
	return []float64{
		f.F0Mean,
		f.F0Std,
		f.IntensityMean,
		f.IntensityStd,
		f.F1,
		f.F2,
		f.F3,
		f.Jitter,
		f.Shimmer,
		f.HNR,
		f.SpectralCentroid,
		f.SpectralBandwidth,
		f.SpectralRolloff,
		f.ZeroCrossingRate,
	}
}

// FeaturesFromValues rebuilds a vector from FeatureNames-ordered values.
// Missing trailing values are NaN.
func FeaturesFromValues(values []float64) Features {
	at := func(i int) float64 {
		if i < len(values) {
			return values[i]
		}
		return math.NaN()
	}
	return Features{
		F0Mean:            at(0),
		F0Std:             at(1),
		IntensityMean:     at(2),
		IntensityStd:      at(3),
		F1:                at(4),
		F2:                at(5),
		F3:                at(6),
		Jitter:            at(7),
		Shimmer:           at(8),
		HNR:               at(9),
		SpectralCentroid:  at(10),
		SpectralBandwidth: at(11),
		SpectralRolloff:   at(12),
		ZeroCrossingRate:  at(13),
	}
}

// Undefined returns a vector with every descriptor set to NaN.
func Undefined() Features {
	return FeaturesFromValues(nil)
}

// Equal reports whether two vectors are identical, treating NaN as equal to NaN.
func (f Features) Equal(other Features) bool {
	a, b := f.Values(), other.Values()
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
