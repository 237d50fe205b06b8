package acoustics

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
)

// Backend computes descriptors from decoded audio.
type Backend interface {
	Analyze(sig Signal) (Features, error)
}

// Params groups the per-stage analysis settings.
type Params struct {
	Pitch           PitchParams
	Intensity       IntensityParams
	Formant         FormantParams
	Perturbation    PerturbationParams
	Harmonicity     HarmonicityParams
	RolloffFraction float64
}

// DefaultParams returns the standard voice-analysis settings.
func DefaultParams() Params {
	return Params{
		Pitch: PitchParams{
			TimeStep:         0.01,
			Floor:            75,
			Ceiling:          600,
			PeriodsPerWindow: 3,
			VoicingThreshold: 0.45,
			SilenceThreshold: 0.03,
			OctaveCost:       0.01,
		},
		Intensity: IntensityParams{MinPitch: 100, SubtractMean: true},
		Formant: FormantParams{
			MaxFormant:      5500,
			Count:           5,
			WindowLength:    0.025,
			PreEmphasisFrom: 50,
		},
		Perturbation: PerturbationParams{
			Floor:           75,
			Ceiling:         500,
			ShortestPeriod:  0.0001,
			LongestPeriod:   0.02,
			PeriodFactor:    1.3,
			AmplitudeFactor: 1.6,
		},
		Harmonicity: HarmonicityParams{
			TimeStep:         0.01,
			Floor:            75,
			SilenceThreshold: 0.1,
			PeriodsPerWindow: 1,
		},
		RolloffFraction: 0.85,
	}
}

// Praat reproduces the classic Praat voice-report measures.
type Praat struct {
	Params Params
}

// NewPraat returns a Praat backend with DefaultParams.
func NewPraat() *Praat {
	return &Praat{Params: DefaultParams()}
}

var errEmptySignal = errors.New("empty signal")

// Analyze implements Backend.
func (b *Praat) Analyze(sig Signal) (Features, error) {
	if len(sig.Samples) == 0 || sig.SampleRate <= 0 {
		return Features{}, errEmptySignal
	}
	for _, v := range sig.Samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Features{}, errors.New("signal contains non-finite samples")
		}
	}
	p := b.Params
	out := Undefined()

	pitch := trackPitch(sig, p.Pitch)
	out.F0Mean, out.F0Std = meanAndStd(voicedFrequencies(pitch))

	out.IntensityMean, out.IntensityStd = meanAndStd(intensityContour(sig, p.Intensity))

	formants := formantsAt(sig, sig.Duration()/2, p.Formant)
	for i, dst := range []*float64{&out.F1, &out.F2, &out.F3} {
		if i < len(formants) {
			*dst = formants[i]
		}
	}

	pulsePitch := p.Pitch
	pulsePitch.Floor = p.Perturbation.Floor
	pulsePitch.Ceiling = p.Perturbation.Ceiling
	trains := periodicPulses(sig, trackPitch(sig, pulsePitch), pulsePitch.TimeStep)
	out.Jitter = jitterLocal(trains, p.Perturbation)
	out.Shimmer = shimmerLocal(trains, p.Perturbation)

	if hnr := harmonicityContour(sig, p.Harmonicity); len(hnr) > 0 {
		out.HNR, _ = stats.Mean(hnr)
	}

	shape := spectrum(sig, p.RolloffFraction)
	out.SpectralCentroid = shape.Centroid
	out.SpectralBandwidth = shape.Bandwidth
	out.SpectralRolloff = shape.Rolloff
	out.ZeroCrossingRate = zeroCrossingRate(sig)
	return out, nil
}

// meanAndStd returns the mean and population standard deviation, or NaN for
// both when values is empty.
func meanAndStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	sd, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return m, math.NaN()
	}
	return m, sd
}
