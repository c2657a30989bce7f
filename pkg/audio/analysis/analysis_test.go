package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speakbetter/speech-coach/pkg/audio"
)

// sineWave generates a pure tone at freq Hz with the given amplitude.
func sineWave(freq float64, amplitude float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// speechLike alternates loud voiced bursts with near-silent gaps, which
// gives every metric something to measure.
func speechLike(seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	burst := sampleRate / 2 // 500 ms on, 500 ms off
	for i := range out {
		if (i/burst)%2 == 0 {
			out[i] = 0.5 * math.Sin(2*math.Pi*180*float64(i)/float64(sampleRate))
		}
	}
	return out
}

func TestAnalyzeRejectsWrongSampleRate(t *testing.T) {
	e := NewExtractor()

	buf := &audio.Buffer{
		Samples:    sineWave(220, 0.5, 1.0, 44100),
		SampleRate: 44100,
	}

	result, err := e.Analyze(buf)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, audio.IsCode(err, audio.ErrCodeUnsupportedRate))
}

func TestAnalyzeRejectsEmptyBuffer(t *testing.T) {
	e := NewExtractor()

	result, err := e.Analyze(&audio.Buffer{SampleRate: RequiredSampleRate})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, audio.IsCode(err, audio.ErrCodeAnalysis))
}

func TestAnalyzeSilenceYieldsZeroMetrics(t *testing.T) {
	e := NewExtractor()

	buf := &audio.Buffer{
		Samples:    make([]float64, RequiredSampleRate*2),
		SampleRate: RequiredSampleRate,
	}

	result, err := e.Analyze(buf)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, result.Duration, 1e-9)
	assert.Zero(t, result.SpeechRate)
	assert.Zero(t, result.PauseCount)
	assert.Zero(t, result.VolumeVariation)
	assert.Zero(t, result.PitchVariation)
	assert.Zero(t, result.EnergyLevel)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	e := NewExtractor()

	buf := &audio.Buffer{
		Samples:    speechLike(4.0, RequiredSampleRate),
		SampleRate: RequiredSampleRate,
	}

	first, err := e.Analyze(buf)
	require.NoError(t, err)
	second, err := e.Analyze(buf)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzeMetricsAreFinite(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		name    string
		samples []float64
	}{
		{"single_frame", sineWave(220, 0.5, 0.05, RequiredSampleRate)},
		{"pure_tone", sineWave(220, 0.5, 2.0, RequiredSampleRate)},
		{"speech_like", speechLike(3.0, RequiredSampleRate)},
		{"tiny_amplitude", sineWave(100, 1e-12, 1.0, RequiredSampleRate)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := e.Analyze(&audio.Buffer{
				Samples:    tc.samples,
				SampleRate: RequiredSampleRate,
			})
			require.NoError(t, err)

			for key, v := range result.Map() {
				f, ok := v.(float64)
				if !ok {
					continue
				}
				assert.False(t, math.IsNaN(f), "metric %s is NaN", key)
				assert.False(t, math.IsInf(f, 0), "metric %s is infinite", key)
			}
		})
	}
}

func TestAnalyzeSpeechLikeSignal(t *testing.T) {
	e := NewExtractor()

	buf := &audio.Buffer{
		Samples:    speechLike(4.0, RequiredSampleRate),
		SampleRate: RequiredSampleRate,
	}

	result, err := e.Analyze(buf)
	require.NoError(t, err)

	// Bursts alternate with silence, so every metric should register.
	assert.Greater(t, result.SpeechRate, 0.0)
	assert.Greater(t, result.PauseCount, 0)
	assert.Greater(t, result.VolumeVariation, 0.0)
	assert.Greater(t, result.EnergyLevel, 0.0)
}

func TestPauseCountCountsPauseStarts(t *testing.T) {
	// Each silent gap counts once no matter how many frames it spans.
	sr := RequiredSampleRate
	var samples []float64
	samples = append(samples, sineWave(180, 0.5, 1.0, sr)...)
	samples = append(samples, make([]float64, sr)...) // one long gap
	samples = append(samples, sineWave(180, 0.5, 1.0, sr)...)

	e := NewExtractor()
	result, err := e.Analyze(&audio.Buffer{Samples: samples, SampleRate: sr})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PauseCount)
}

func TestResultMapKeys(t *testing.T) {
	r := &Result{
		Duration:        10.0,
		SpeechRate:      120.0,
		PauseCount:      4,
		VolumeVariation: 0.05,
		PitchVariation:  22.0,
		EnergyLevel:     0.1,
	}

	m := r.Map()
	assert.Equal(t, 10.0, m["duration"])
	assert.Equal(t, 120.0, m["speech_rate"])
	assert.Equal(t, 4, m["pause_count"])
	assert.Equal(t, 0.05, m["volume_variation"])
	assert.Equal(t, 22.0, m["pitch_variation"])
	assert.Equal(t, 0.1, m["energy_level"])
}

func TestFrames(t *testing.T) {
	cases := []struct {
		name        string
		samples     int
		frameLength int
		hopLength   int
		wantFrames  int
	}{
		{"empty", 0, 2048, 512, 0},
		{"shorter_than_frame", 1000, 2048, 512, 1},
		{"exactly_one_frame", 2048, 2048, 512, 1},
		{"one_hop_more", 2560, 2048, 512, 2},
		{"one_second", 16000, 2048, 512, 28},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fr := frames(make([]float64, tc.samples), tc.frameLength, tc.hopLength)
			assert.Len(t, fr, tc.wantFrames)
		})
	}
}

func TestFrameRMS(t *testing.T) {
	// A constant-amplitude square-ish signal has RMS equal to the
	// amplitude in every frame.
	samples := make([]float64, 4096)
	for i := range samples {
		samples[i] = 0.25
	}

	rms := frameRMS(samples, 2048, 512)
	require.NotEmpty(t, rms)
	for _, v := range rms {
		assert.InDelta(t, 0.25, v, 1e-9)
	}
}

func TestSanitizeFinite(t *testing.T) {
	assert.Equal(t, 1.5, sanitizeFinite(1.5))
	assert.Equal(t, 0.0, sanitizeFinite(math.NaN()))
	assert.Equal(t, 0.0, sanitizeFinite(math.Inf(1)))
	assert.Equal(t, 0.0, sanitizeFinite(math.Inf(-1)))
}
