package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestSampleRate is the sample rate of generated test stimuli.
const TestSampleRate = 16000

// Voice describes a synthetic vowel-like signal: a harmonic series on F0 with
// amplitudes falling off as 1/k.
type Voice struct {
	F0        float64
	Harmonics int
	Seconds   float64
	Amplitude float64
	Channels  int
}

// DefaultVoice is a 150 Hz voice lasting 0.6 s.
func DefaultVoice() Voice {
	return Voice{F0: 150, Harmonics: 8, Seconds: 0.6, Amplitude: 0.5, Channels: 1}
}

// Samples renders the voice as float samples in [-1, 1], mono.
func (v Voice) Samples() []float64 {
	n := int(v.Seconds * TestSampleRate)
	out := make([]float64, n)
	if v.F0 <= 0 {
		return out
	}
	harmonics := v.Harmonics
	if harmonics <= 0 {
		harmonics = 1
	}
	var norm float64
	for k := 1; k <= harmonics; k++ {
		norm += 1 / float64(k)
	}
	for i := range out {
		t := float64(i) / TestSampleRate
		var s float64
		for k := 1; k <= harmonics; k++ {
			s += math.Sin(2*math.Pi*v.F0*float64(k)*t) / float64(k)
		}
		out[i] = v.Amplitude * s / norm
	}
	return out
}

// WriteWAV renders v as a 16-bit PCM WAV file at path.
func WriteWAV(t testing.TB, path string, v Voice) {
	t.Helper()
	WriteSamplesWAV(t, path, v.Samples(), v.Channels)
}

// WriteSamplesWAV writes mono samples to a 16-bit WAV, duplicating them across
// channels when channels > 1.
func WriteSamplesWAV(t testing.TB, path string, samples []float64, channels int) {
	t.Helper()
	if channels <= 0 {
		channels = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	data := make([]int, 0, len(samples)*channels)
	for _, s := range samples {
		v := int(math.Round(s * 32767))
		for c := 0; c < channels; c++ {
			data = append(data, v)
		}
	}
	enc := wav.NewEncoder(f, TestSampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: TestSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
}
