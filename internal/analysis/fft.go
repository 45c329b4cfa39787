package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of the non-negative frequency bins of
// data. The mean is removed first and the input is zero-padded to a power of
// two, so bin k corresponds to frequency k/(n·dt) for the padded length n.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	n := nextPow2(len(data))

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	buf := make([]float64, n)
	for i, v := range data {
		buf[i] = v - mean
	}

	spectrum := fft.FFTReal(buf)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in data
// sampled every dt. The peak bin is refined by parabolic interpolation.
func DominantPeriod(data []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 3 || dt <= 0 {
		return 0, false
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0, false
	}

	bin := float64(best)
	if best+1 < len(ps) {
		a, b, c := ps[best-1], ps[best], ps[best+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}

	n := nextPow2(len(data))
	return float64(n) * dt / bin, true
}
