package audio

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float64, 32000), SampleRate: 16000}
	assert.Equal(t, 2*time.Second, buf.Duration())
	assert.Equal(t, 2.0, buf.Seconds())

	var nilBuf *Buffer
	assert.Zero(t, nilBuf.Duration())
	assert.Zero(t, nilBuf.Seconds())

	noRate := &Buffer{Samples: make([]float64, 100)}
	assert.Zero(t, noRate.Seconds())
}

func TestAudioErrorFormatting(t *testing.T) {
	cause := errors.New("disk unplugged")
	err := NewAudioError(ErrCodeDecoding, "decode", "/tmp/a.wav", "failed to read WAV file", cause)

	assert.Equal(t, "decode: failed to read WAV file (/tmp/a.wav): disk unplugged", err.Error())
	assert.ErrorIs(t, err, cause)

	noPath := NewAudioError(ErrCodeAnalysis, "analyze", "", "empty waveform buffer", nil)
	assert.Equal(t, "analyze: empty waveform buffer", noPath.Error())
}

func TestIsCode(t *testing.T) {
	err := NewAudioError(ErrCodeEmptyInput, "decode", "a.wav", "input file is empty", nil)

	assert.True(t, IsCode(err, ErrCodeEmptyInput))
	assert.False(t, IsCode(err, ErrCodeDecoding))

	wrapped := fmt.Errorf("uploading: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeEmptyInput))

	assert.False(t, IsCode(errors.New("plain"), ErrCodeEmptyInput))
	assert.False(t, IsCode(nil, ErrCodeEmptyInput))
}
