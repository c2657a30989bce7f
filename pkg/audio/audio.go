// Package audio defines the waveform buffer shared by the decode and
// analysis stages, and the error taxonomy for the recording pipeline.
package audio

import "time"

// Buffer holds a mono PCM waveform in float64 samples normalized to
// [-1.0, 1.0] together with its sample rate.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the buffer length in seconds.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}
