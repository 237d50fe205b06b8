package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video"},
    {"index": 1, "codec_name": "flac", "codec_type": "audio", "sample_rate": "44100", "channels": 2, "duration": "2.500000"}
  ],
  "format": {"filename": "clip.flac", "nb_streams": 2, "duration": "2.512000", "size": "183211", "format_name": "flac"}
}`

func TestParseAudioHelpers(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	stream, ok := result.AudioStream()
	if !ok || stream.CodecName != "flac" || stream.Channels != 2 {
		t.Fatalf("unexpected audio stream: %+v ok=%v", stream, ok)
	}
	if result.SampleRateHz() != 44100 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRateHz())
	}
	if result.DurationSeconds() != 2.512 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 183211 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", Duration: "1.25"}}}
	if result.DurationSeconds() != 1.25 {
		t.Fatalf("expected stream duration, got %v", result.DurationSeconds())
	}
}

func TestHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", SampleRate: "n/a"}},
		Format:  Format{Duration: "bad", Size: "-1"},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.SampleRateHz() != 0 {
		t.Fatalf("expected sample rate 0, got %d", result.SampleRateHz())
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fakeprobe")
	body := "#!/bin/sh\ncat <<'JSON'\n" + samplePayload + "\nJSON\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	result, err := Inspect(context.Background(), script, "clip.flac")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.SampleRateHz() != 44100 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRateHz())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
