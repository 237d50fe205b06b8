package acoustics

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"

	"voicejudge/internal/media/ffprobe"
)

// Decoder reads an audio file into a mono Signal.
type Decoder struct {
	// FFmpeg and FFprobe are used for formats without a native decoder.
	// Empty values disable the fallback.
	FFmpeg  string
	FFprobe string
}

// Decode dispatches on the file extension. Multichannel audio is averaged to
// mono.
func (d Decoder) Decode(ctx context.Context, path string) (Signal, error) {
	var (
		sig Signal
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		sig, err = decodeWAV(path)
		if errors.Is(err, errUnsupportedEncoding) && d.FFmpeg != "" {
			sig, err = d.decodeExternal(ctx, path)
		}
	case ".flac":
		sig, err = decodeFLAC(path)
	default:
		if d.FFmpeg == "" {
			return Signal{}, fmt.Errorf("decode %s: no decoder for extension %q", path, filepath.Ext(path))
		}
		sig, err = d.decodeExternal(ctx, path)
	}
	if err != nil {
		return Signal{}, err
	}
	if len(sig.Samples) == 0 {
		return Signal{}, fmt.Errorf("decode %s: no samples", path)
	}
	if sig.SampleRate <= 0 {
		return Signal{}, fmt.Errorf("decode %s: invalid sample rate %v", path, sig.SampleRate)
	}
	return sig, nil
}

var errUnsupportedEncoding = errors.New("unsupported sample encoding")

func decodeWAV(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Signal{}, fmt.Errorf("decode %s: not a valid wav file", path)
	}
	if dec.WavAudioFormat != 1 && dec.WavAudioFormat != 0xFFFE {
		return Signal{}, fmt.Errorf("decode %s: wav format %d: %w", path, dec.WavAudioFormat, errUnsupportedEncoding)
	}
	bitDepth := int(dec.BitDepth)
	var offset float64
	switch bitDepth {
	case 8:
		// 8-bit PCM is unsigned.
		offset = 128
	case 16, 24, 32:
	default:
		return Signal{}, fmt.Errorf("decode %s: %d-bit samples: %w", path, bitDepth, errUnsupportedEncoding)
	}
	channels := int(dec.NumChans)
	if channels <= 0 {
		return Signal{}, fmt.Errorf("decode %s: missing format chunk", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}
	scale := math.Ldexp(1, bitDepth-1)
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch]) - offset
		}
		samples[i] = sum / float64(channels) / scale
	}
	return Signal{Samples: samples, SampleRate: float64(dec.SampleRate)}, nil
}

func decodeFLAC(path string) (Signal, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.BitsPerSample == 0 {
		return Signal{}, fmt.Errorf("decode %s: missing stream info", path)
	}
	scale := math.Ldexp(1, int(info.BitsPerSample)-1)
	samples := make([]float64, 0, int(info.NSamples))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Signal{}, fmt.Errorf("decode %s: %w", path, err)
		}
		channels := len(frame.Subframes)
		if channels == 0 {
			continue
		}
		for i := range int(frame.BlockSize) {
			var sum float64
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			samples = append(samples, sum/float64(channels)/scale)
		}
	}
	return Signal{Samples: samples, SampleRate: float64(info.SampleRate)}, nil
}

// decodeExternal converts the file to mono 32-bit float PCM at its native
// sample rate.
func (d Decoder) decodeExternal(ctx context.Context, path string) (Signal, error) {
	probe, err := ffprobe.Inspect(ctx, d.FFprobe, path)
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}
	rate := probe.SampleRateHz()
	if rate <= 0 {
		return Signal{}, fmt.Errorf("decode %s: no audio stream", path)
	}

	cmd := exec.CommandContext(ctx, d.FFmpeg,
		"-v", "error", "-nostdin",
		"-i", path,
		"-vn", "-ac", "1", "-ar", strconv.Itoa(rate),
		"-f", "f32le", "-acodec", "pcm_f32le", "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	raw, err := cmd.Output()
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: ffmpeg: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	count := len(raw) / 4
	samples := make([]float64, count)
	for i := range count {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return Signal{Samples: samples, SampleRate: float64(rate)}, nil
}
