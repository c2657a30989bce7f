package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/speakbetter/speech-coach/pkg/audio"
)

// wavFormat mirrors the fields of a RIFF fmt chunk we care about.
type wavFormat struct {
	audioFormat   uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

// parseWAV parses a RIFF/WAVE byte slice into a mono float64 buffer.
// Multi-channel data is averaged down to one channel. An empty data
// chunk is valid and yields an empty buffer.
func parseWAV(data []byte) (*audio.Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var format *wavFormat
	var pcm []byte

	// Walk chunks; fmt must precede data per spec but tolerate any order.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkSize < 0 || body+chunkSize > len(data) {
			return nil, fmt.Errorf("truncated %q chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			format = &wavFormat{
				audioFormat:   binary.LittleEndian.Uint16(data[body : body+2]),
				channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				sampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				bitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
		if pcm != nil && format != nil {
			break
		}
	}

	if format == nil {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if format.channels <= 0 || format.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid format: %d channels at %d Hz",
			format.channels, format.sampleRate)
	}
	if pcm == nil {
		return nil, fmt.Errorf("missing data chunk")
	}

	samples, err := convertPCM(pcm, format)
	if err != nil {
		return nil, err
	}

	if format.channels > 1 {
		samples = downmixMono(samples, format.channels)
	}

	return &audio.Buffer{Samples: samples, SampleRate: format.sampleRate}, nil
}

// convertPCM converts raw little-endian sample bytes to float64 [-1, 1].
func convertPCM(pcm []byte, format *wavFormat) ([]float64, error) {
	switch {
	case format.audioFormat == wavFormatPCM && format.bitsPerSample == 16:
		if len(pcm)%2 != 0 {
			return nil, fmt.Errorf("data size not aligned for 16-bit samples")
		}
		samples := make([]float64, len(pcm)/2)
		for i := range samples {
			s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
			samples[i] = float64(s) / 32768.0
		}
		return samples, nil

	case format.audioFormat == wavFormatPCM && format.bitsPerSample == 32:
		if len(pcm)%4 != 0 {
			return nil, fmt.Errorf("data size not aligned for 32-bit samples")
		}
		samples := make([]float64, len(pcm)/4)
		for i := range samples {
			s := int32(binary.LittleEndian.Uint32(pcm[i*4 : i*4+4]))
			samples[i] = float64(s) / 2147483648.0
		}
		return samples, nil

	case format.audioFormat == wavFormatPCM && format.bitsPerSample == 8:
		// 8-bit WAV is unsigned with a 128 midpoint.
		samples := make([]float64, len(pcm))
		for i, b := range pcm {
			samples[i] = (float64(b) - 128.0) / 128.0
		}
		return samples, nil

	case format.audioFormat == wavFormatIEEEFloat && format.bitsPerSample == 32:
		if len(pcm)%4 != 0 {
			return nil, fmt.Errorf("data size not aligned for float32 samples")
		}
		samples := make([]float64, len(pcm)/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(pcm[i*4 : i*4+4])
			samples[i] = float64(math.Float32frombits(bits))
		}
		return samples, nil

	default:
		return nil, fmt.Errorf("unsupported WAV encoding: format %d, %d bits",
			format.audioFormat, format.bitsPerSample)
	}
}

// downmixMono averages interleaved channels into one.
func downmixMono(interleaved []float64, channels int) []float64 {
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
