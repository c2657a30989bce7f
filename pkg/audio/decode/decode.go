// Package decode turns uploaded recordings of arbitrary container/codec
// into mono 16 kHz float64 waveform buffers for the analysis stage.
//
// WAV files are parsed directly. Everything else goes through ffmpeg,
// which writes a normalized intermediate WAV into the scratch directory
// before parsing. The intermediate file is an implementation convenience
// and is removed unless KeepScratch is set.
package decode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/speakbetter/speech-coach/pkg/audio"
	"github.com/speakbetter/speech-coach/pkg/logging"
)

// Config controls decoding and normalization.
type Config struct {
	// TargetSampleRate is the sample rate every decoded buffer is
	// normalized to. The analysis stage requires 16000.
	TargetSampleRate int `mapstructure:"target_sample_rate" json:"target_sample_rate"`

	// FFmpegPath is the ffmpeg binary used for non-WAV containers.
	FFmpegPath string `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`

	// ScratchDir receives intermediate WAV files. Defaults to os.TempDir.
	ScratchDir string `mapstructure:"scratch_dir" json:"scratch_dir"`

	// KeepScratch leaves intermediate files behind for debugging.
	KeepScratch bool `mapstructure:"keep_scratch" json:"keep_scratch"`
}

// DefaultConfig returns the decoder configuration used in production.
func DefaultConfig() Config {
	return Config{
		TargetSampleRate: 16000,
		FFmpegPath:       "ffmpeg",
		ScratchDir:       os.TempDir(),
	}
}

// Decoder loads recordings from disk and normalizes them to mono
// waveform buffers at the configured sample rate.
type Decoder struct {
	config Config
	logger logging.Logger
}

// NewDecoder creates a decoder with the given configuration. Zero-value
// fields fall back to DefaultConfig values.
func NewDecoder(config Config) *Decoder {
	def := DefaultConfig()
	if config.TargetSampleRate <= 0 {
		config.TargetSampleRate = def.TargetSampleRate
	}
	if config.FFmpegPath == "" {
		config.FFmpegPath = def.FFmpegPath
	}
	if config.ScratchDir == "" {
		config.ScratchDir = def.ScratchDir
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile decodes the audio file at path into a mono buffer at the
// target sample rate. A zero-byte file yields an EMPTY_INPUT error; an
// unsupported or corrupt file yields a DECODING_FAILED error. Silent
// audio decodes successfully.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*audio.Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, audio.NewAudioError(audio.ErrCodeDecoding, "decode", path,
			"input file not readable", err)
	}
	if info.Size() == 0 {
		return nil, audio.NewAudioError(audio.ErrCodeEmptyInput, "decode", path,
			"input file is empty", nil)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		buf, err := d.decodeWAVFile(path)
		if err == nil {
			return d.normalize(buf), nil
		}
		d.logger.Debug("direct WAV parse failed, falling back to ffmpeg", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
	}

	return d.decodeViaFFmpeg(ctx, path)
}

// decodeWAVFile parses a RIFF/WAVE file without external tooling.
func (d *Decoder) decodeWAVFile(path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, audio.NewAudioError(audio.ErrCodeDecoding, "decode", path,
			"failed to read WAV file", err)
	}
	buf, err := parseWAV(data)
	if err != nil {
		return nil, audio.NewAudioError(audio.ErrCodeDecoding, "decode", path,
			"failed to parse WAV data", err)
	}
	return buf, nil
}

// decodeViaFFmpeg converts the input to a scratch 16 kHz mono WAV and
// parses that. Handles every container/codec the ffmpeg build supports.
func (d *Decoder) decodeViaFFmpeg(ctx context.Context, path string) (*audio.Buffer, error) {
	scratch := filepath.Join(d.config.ScratchDir,
		"speechcoach_"+uuid.NewString()+".wav")
	if !d.config.KeepScratch {
		defer os.Remove(scratch)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", path,
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"-acodec", "pcm_s16le",
		scratch,
	}

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	d.logger.Debug("converting recording with ffmpeg", logging.Fields{
		"input":   path,
		"scratch": scratch,
	})

	if err := cmd.Run(); err != nil {
		msg := "ffmpeg conversion failed"
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return nil, audio.NewAudioError(audio.ErrCodeDecoding, "decode", path, msg, err)
	}

	buf, err := d.decodeWAVFile(scratch)
	if err != nil {
		return nil, err
	}
	return d.normalize(buf), nil
}

// normalize downmixes to mono and resamples to the target rate.
func (d *Decoder) normalize(buf *audio.Buffer) *audio.Buffer {
	if buf.SampleRate == d.config.TargetSampleRate {
		return buf
	}
	return &audio.Buffer{
		Samples:    resampleLinear(buf.Samples, buf.SampleRate, d.config.TargetSampleRate),
		SampleRate: d.config.TargetSampleRate,
	}
}
