package analysis

import (
	"github.com/mjibson/go-dsp/fft"
)

// voicingThreshold is the minimum normalized autocorrelation peak for a
// frame to count as voiced. Below it the frame reports no pitch.
const voicingThreshold = 0.3

// estimatePitch returns the fundamental-frequency estimate for one
// frame in Hz, or 0 for unvoiced/silent frames. The search is bounded
// to [minHz, maxHz].
//
// The autocorrelation is computed through the frequency domain
// (Wiener-Khinchin): zero-pad, FFT, power spectrum, inverse FFT. That
// keeps long frames cheap and avoids the O(n^2) time-domain sum.
func estimatePitch(frame []float64, sampleRate int, minHz, maxHz float64) float64 {
	n := len(frame)
	if n == 0 || sampleRate <= 0 || minHz <= 0 || maxHz <= minHz {
		return 0
	}

	maxLag := int(float64(sampleRate) / minHz)
	minLag := int(float64(sampleRate) / maxHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	if minLag > maxLag {
		return 0
	}

	ac := autocorrelate(frame)

	energy := ac[0]
	if energy < 1e-10 {
		// Silence: nothing to correlate against.
		return 0
	}

	bestLag := 0
	bestVal := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if ac[lag] > bestVal {
			bestVal = ac[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 || bestVal/energy < voicingThreshold {
		return 0
	}

	return float64(sampleRate) / float64(bestLag)
}

// autocorrelate returns the (biased) autocorrelation of x for lags
// [0, len(x)).
func autocorrelate(x []float64) []float64 {
	n := len(x)

	// Pad to at least 2n so the circular convolution of the FFT pair
	// equals the linear autocorrelation over the lags we read.
	size := nextPow2(2 * n)
	padded := make([]float64, size)
	copy(padded, x)

	spectrum := fft.FFTReal(padded)
	power := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		re := real(c)
		im := imag(c)
		power[i] = complex(re*re+im*im, 0)
	}

	inv := fft.IFFT(power)
	ac := make([]float64, n)
	for i := range ac {
		ac[i] = real(inv[i])
	}
	return ac
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// meanPitch is a debugging helper exposed to tests: the mean of the
// voiced estimates across a whole signal, 0 when nothing is voiced.
func meanPitch(samples []float64, sampleRate int) float64 {
	var sum float64
	var count int
	for _, frame := range frames(samples, FrameLength, HopLength) {
		if f0 := estimatePitch(frame, sampleRate, PitchMinHz, PitchMaxHz); f0 > 0 {
			sum += f0
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
