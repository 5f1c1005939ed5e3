// Package signal simulates a neurophysiological recording: a fixed-rate
// waveform mixing band-limited oscillations with Gaussian noise, plus the
// summary features stored alongside a note.
package signal

import (
	"math"
	"math/rand"
)

// Band names follow the usual EEG convention.
const (
	BandDelta = "delta"
	BandTheta = "theta"
	BandAlpha = "alpha"
	BandBeta  = "beta"
)

// bandOrder fixes iteration order so seeded generation is reproducible.
var bandOrder = []string{BandDelta, BandTheta, BandAlpha, BandBeta}

// bandCenters maps each band to its center frequency in Hz.
var bandCenters = map[string]float64{
	BandDelta: 2.0,
	BandTheta: 6.0,
	BandAlpha: 10.0,
	BandBeta:  20.0,
}

// Params configures one simulated recording. The zero value is not usable;
// call DefaultParams.
type Params struct {
	SampleRateHz int
	DurationSec  float64
	// Amplitudes per band; bands absent from the map are silent.
	Amplitudes map[string]float64
	// NoiseStdDev is the standard deviation of the additive Gaussian noise.
	NoiseStdDev float64
	// Seed makes the recording reproducible.
	Seed int64
}

// DefaultParams returns a one-second, 256 Hz recording dominated by alpha.
func DefaultParams(seed int64) Params {
	return Params{
		SampleRateHz: 256,
		DurationSec:  1.0,
		Amplitudes: map[string]float64{
			BandDelta: 0.4,
			BandTheta: 0.6,
			BandAlpha: 1.2,
			BandBeta:  0.3,
		},
		NoiseStdDev: 0.2,
		Seed:        seed,
	}
}

// Features are the scalar summaries derived from a recording; they travel
// with the note as metadata.
type Features struct {
	RMS          float64 `json:"rms"`
	PeakToPeak   float64 `json:"peak_to_peak"`
	DominantBand string  `json:"dominant_band"`
	PeakFreqHz   float64 `json:"peak_freq_hz"`
}

// Recording is one simulated signal with its derived features.
type Recording struct {
	SampleRateHz int       `json:"sample_rate_hz"`
	Samples      []float64 `json:"samples"`
	Features     Features  `json:"features"`
}

// Generate produces a deterministic recording for the given params.
func Generate(p Params) Recording {
	n := int(float64(p.SampleRateHz) * p.DurationSec)
	if n <= 0 {
		return Recording{SampleRateHz: p.SampleRateHz, Samples: []float64{}}
	}
	rng := rand.New(rand.NewSource(p.Seed))

	// Random phase per band, fixed for the whole recording.
	phases := make(map[string]float64, len(bandOrder))
	for _, band := range bandOrder {
		phases[band] = rng.Float64() * 2 * math.Pi
	}

	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(p.SampleRateHz)
		v := 0.0
		for _, band := range bandOrder {
			amp, ok := p.Amplitudes[band]
			if !ok {
				continue
			}
			v += amp * math.Sin(2*math.Pi*bandCenters[band]*t+phases[band])
		}
		v += rng.NormFloat64() * p.NoiseStdDev
		samples[i] = v
	}

	return Recording{
		SampleRateHz: p.SampleRateHz,
		Samples:      samples,
		Features:     extractFeatures(p, samples),
	}
}

func extractFeatures(p Params, samples []float64) Features {
	var sumSq, lo, hi float64
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		sumSq += v * v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))

	dominant, best := "", math.Inf(-1)
	for _, band := range bandOrder {
		if amp, ok := p.Amplitudes[band]; ok && amp > best {
			best = amp
			dominant = band
		}
	}

	return Features{
		RMS:          rms,
		PeakToPeak:   hi - lo,
		DominantBand: dominant,
		PeakFreqHz:   bandCenters[dominant],
	}
}
