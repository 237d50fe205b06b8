// Package acoustics extracts the fixed acoustic descriptor vector recorded with
// every main-block trial.
//
// Extraction is split into two collaborators. A Decoder turns an audio file
// into a mono float Signal: WAV and FLAC are decoded natively, anything else is
// piped through ffmpeg. A Backend turns the Signal into Features. The default
// backend, Praat, follows the parameterization of the classic Praat
// analyses:
//
//   - pitch: autocorrelation, 10 ms step, 75-600 Hz, voicing threshold 0.45
//   - intensity: Kaiser-20 window, minimum pitch 100 Hz, mean subtracted
//   - formants: Burg LPC on a 25 ms Gaussian window, 5 formants up to 5500 Hz
//   - jitter/shimmer (local): periodic point process, 75-500 Hz,
//     period factor 1.3, amplitude factor 1.6
//   - HNR: cross-correlation harmonicity, 10 ms step, 75 Hz, silence 0.1
//   - spectrum: one FFT over the whole signal, 85% roll-off
//
// Values that the analysis cannot resolve (no voiced frames, no formant at the
// midpoint, too few periods) are NaN rather than zero. Files that cannot be
// decoded fail with faults.ErrFeatureExtraction. Every stage is deterministic:
// the same file always yields the same vector.
package acoustics
