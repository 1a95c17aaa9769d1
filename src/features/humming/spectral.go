package humming

import (
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

const (
	frameSize = 2048
	hopSize   = 512

	// Subtraction tuning: remove 30% of the per-bin noise floor but
	// never drop a bin below 10% of its original magnitude, which keeps
	// the melody intact when the floor estimate is off.
	floorWeight  = 0.3
	magnitudeMin = 0.1

	noiseFloorPercentile = 20
)

// spectralSubtract reduces steady background noise in hummed or voice
// recordings. It estimates a per-bin noise floor from the quietest
// frames and subtracts a fraction of it from every frame, then
// resynthesizes the signal by overlap-add.
func spectralSubtract(samples []float64) []float64 {
	if len(samples) < frameSize {
		return samples
	}

	window := hann(frameSize)
	numFrames := 1 + (len(samples)-frameSize)/hopSize

	spectra := make([][]complex128, numFrames)
	magnitudes := make([][]float64, numFrames)
	frame := make([]float64, frameSize)
	for f := 0; f < numFrames; f++ {
		offset := f * hopSize
		for i := 0; i < frameSize; i++ {
			frame[i] = samples[offset+i] * window[i]
		}
		spec := fft.FFTReal(frame)
		mags := make([]float64, frameSize)
		for i, c := range spec {
			mags[i] = cmplxAbs(c)
		}
		spectra[f] = spec
		magnitudes[f] = mags
	}

	floor := noiseFloor(magnitudes)

	out := make([]float64, len(samples))
	weight := make([]float64, len(samples))
	for f := 0; f < numFrames; f++ {
		spec := spectra[f]
		for bin := 0; bin < frameSize; bin++ {
			mag := magnitudes[f][bin]
			if mag == 0 {
				continue
			}
			clean := math.Max(mag-floorWeight*floor[bin], magnitudeMin*mag)
			scale := clean / mag
			spec[bin] = complex(real(spec[bin])*scale, imag(spec[bin])*scale)
		}

		resynth := fft.IFFT(spec)
		offset := f * hopSize
		for i := 0; i < frameSize; i++ {
			out[offset+i] += real(resynth[i]) * window[i]
			weight[offset+i] += window[i] * window[i]
		}
	}

	for i := range out {
		if weight[i] > 1e-9 {
			out[i] /= weight[i]
		} else {
			out[i] = samples[i]
		}
	}
	return out
}

// noiseFloor estimates the per-bin noise floor as a low percentile of
// the magnitude across all frames.
func noiseFloor(magnitudes [][]float64) []float64 {
	numFrames := len(magnitudes)
	floor := make([]float64, frameSize)
	column := make([]float64, numFrames)
	for bin := 0; bin < frameSize; bin++ {
		for f := 0; f < numFrames; f++ {
			column[f] = magnitudes[f][bin]
		}
		floor[bin] = percentile(column, noiseFloorPercentile)
	}
	return floor
}

// percentile returns the p-th percentile of values, interpolating
// between samples. values is not modified.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// normalize scales samples so the peak sits at target, leaving silence
// untouched.
func normalize(samples []float64, target float64) []float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak < 1e-9 {
		return samples
	}
	scale := target / peak
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s * scale
	}
	return out
}

// hann returns a Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
