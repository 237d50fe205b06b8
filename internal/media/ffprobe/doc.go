// Package ffprobe wraps ffprobe JSON output for audio stimuli.
//
// Inspect runs ffprobe against a file and returns a typed Result. Helpers on
// Result expose the container duration and the first audio stream's sample
// rate and channel count, which the playback and decoding layers use to size
// waits and raw PCM reads.
package ffprobe
