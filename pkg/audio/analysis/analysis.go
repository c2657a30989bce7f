// Package analysis computes speech-delivery metrics from a mono
// waveform: speech-rate proxy, pause count, volume variation, pitch
// variation and energy level.
//
// Framing constants are fixed so metrics stay comparable across
// recordings and across releases.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/speakbetter/speech-coach/pkg/audio"
	"github.com/speakbetter/speech-coach/pkg/logging"
)

const (
	// RequiredSampleRate is the only input rate the extractor accepts.
	// Callers normalize through the decode package first.
	RequiredSampleRate = 16000

	// FrameLength is the short-time analysis window in samples
	// (128 ms at 16 kHz).
	FrameLength = 2048

	// HopLength is the stride between consecutive frames in samples
	// (32 ms at 16 kHz).
	HopLength = 512

	// PitchMinHz and PitchMaxHz bound the pitch tracker to the human
	// speech fundamental-frequency range.
	PitchMinHz = 50.0
	PitchMaxHz = 300.0

	// pauseThresholdFactor scales mean RMS into the silence threshold
	// used for pause detection.
	pauseThresholdFactor = 0.1
)

// Result holds the extracted metrics for one recording. The JSON keys
// form the canonical detailed_analysis payload.
type Result struct {
	Duration        float64 `json:"duration"`
	SpeechRate      float64 `json:"speech_rate"`
	PauseCount      int     `json:"pause_count"`
	VolumeVariation float64 `json:"volume_variation"`
	PitchVariation  float64 `json:"pitch_variation"`
	EnergyLevel     float64 `json:"energy_level"`
}

// Map returns the result as the canonical metric map. Integer metrics
// stay integers.
func (r *Result) Map() map[string]any {
	return map[string]any{
		"duration":         r.Duration,
		"speech_rate":      r.SpeechRate,
		"pause_count":      r.PauseCount,
		"volume_variation": r.VolumeVariation,
		"pitch_variation":  r.PitchVariation,
		"energy_level":     r.EnergyLevel,
	}
}

// Extractor computes metrics from normalized waveform buffers. It is
// stateless; a single Extractor may be shared across goroutines.
type Extractor struct {
	logger logging.Logger
}

// NewExtractor creates an acoustic feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}
}

// Analyze extracts the full metric set from buf. The buffer must be
// mono at RequiredSampleRate; anything else is a programmer error on
// the caller's side and yields an UNSUPPORTED_SAMPLE_RATE error. An
// empty buffer yields an ANALYSIS_FAILED error. A silent buffer is
// valid and produces all-zero metrics.
func (e *Extractor) Analyze(buf *audio.Buffer) (*Result, error) {
	if buf == nil || buf.SampleRate != RequiredSampleRate {
		rate := 0
		if buf != nil {
			rate = buf.SampleRate
		}
		return nil, audio.NewAudioError(audio.ErrCodeUnsupportedRate, "analyze", "",
			fmt.Sprintf("got %d Hz, caller must normalize input to %d Hz mono",
				rate, RequiredSampleRate), nil)
	}
	if len(buf.Samples) == 0 {
		return nil, audio.NewAudioError(audio.ErrCodeAnalysis, "analyze", "",
			"empty waveform buffer", nil)
	}

	duration := buf.Seconds()

	rms := frameRMS(buf.Samples, FrameLength, HopLength)
	if len(rms) == 0 {
		return nil, audio.NewAudioError(audio.ErrCodeAnalysis, "analyze", "",
			"no frames after partitioning", nil)
	}

	meanRMS := stat.Mean(rms, nil)

	// Speech-rate proxy: frames louder than the mean count as speech
	// segments, scaled to segments per minute.
	speechSegments := 0
	for _, v := range rms {
		if v > meanRMS {
			speechSegments++
		}
	}
	speechRate := 0.0
	if duration > 0 {
		speechRate = float64(speechSegments) * 60.0 / duration
	}

	// Pause detection counts pause starts: transitions from a frame at
	// or above the silence threshold into one below it.
	threshold := meanRMS * pauseThresholdFactor
	pauseCount := 0
	prevPaused := rms[0] < threshold
	for i := 1; i < len(rms); i++ {
		paused := rms[i] < threshold
		if paused && !prevPaused {
			pauseCount++
		}
		prevPaused = paused
	}

	volumeVariation := stat.PopStdDev(rms, nil)
	energyLevel := meanRMS

	pitchVariation := e.pitchVariation(buf.Samples, buf.SampleRate)

	result := &Result{
		Duration:        sanitizeFinite(duration),
		SpeechRate:      sanitizeFinite(speechRate),
		PauseCount:      pauseCount,
		VolumeVariation: sanitizeFinite(volumeVariation),
		PitchVariation:  sanitizeFinite(pitchVariation),
		EnergyLevel:     sanitizeFinite(energyLevel),
	}

	e.logger.Debug("feature extraction completed", logging.Fields{
		"duration_seconds": result.Duration,
		"frames":           len(rms),
		"speech_segments":  speechSegments,
		"pause_count":      result.PauseCount,
	})

	return result, nil
}

// pitchVariation runs the frame-wise pitch tracker and returns the
// population standard deviation of the voiced estimates, or 0 when no
// frame is voiced.
func (e *Extractor) pitchVariation(samples []float64, sampleRate int) float64 {
	var voiced []float64
	for _, frame := range frames(samples, FrameLength, HopLength) {
		f0 := estimatePitch(frame, sampleRate, PitchMinHz, PitchMaxHz)
		if f0 > 0 {
			voiced = append(voiced, f0)
		}
	}
	if len(voiced) == 0 {
		return 0
	}
	return stat.PopStdDev(voiced, nil)
}

// frames partitions samples into overlapping windows. Input shorter
// than one window yields a single short frame.
func frames(samples []float64, frameLength, hopLength int) [][]float64 {
	if len(samples) == 0 {
		return nil
	}
	if len(samples) < frameLength {
		return [][]float64{samples}
	}
	n := 1 + (len(samples)-frameLength)/hopLength
	out := make([][]float64, 0, n)
	for i := 0; i+frameLength <= len(samples); i += hopLength {
		out = append(out, samples[i:i+frameLength])
	}
	return out
}

// frameRMS computes per-frame root-mean-square energy.
func frameRMS(samples []float64, frameLength, hopLength int) []float64 {
	fr := frames(samples, frameLength, hopLength)
	rms := make([]float64, len(fr))
	for i, frame := range fr {
		sum := 0.0
		for _, s := range frame {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(len(frame)))
	}
	return rms
}

// sanitizeFinite keeps metric outputs finite; degenerate numeric edge
// cases collapse to 0 rather than propagating NaN/Inf into storage.
func sanitizeFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
