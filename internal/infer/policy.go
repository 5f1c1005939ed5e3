package infer

import (
	"math"
	"math/rand"
	"sort"
)

// Policy selects the next token id from a (penalized) logits row.
type Policy interface {
	Next(logits []float32) int
}

// Greedy selects the highest-scoring token deterministically. Ties break
// toward the lowest id.
type Greedy struct{}

func (Greedy) Next(logits []float32) int { return argMax(logits) }

// TopPSampler implements nucleus sampling: logits are scaled by temperature,
// softmaxed, sorted descending, truncated to the smallest prefix whose
// cumulative probability reaches P, renormalized, and sampled. Results are
// reproducible for a fixed seed.
type TopPSampler struct {
	P           float64
	Temperature float64
	rng         *rand.Rand
}

// NewTopPSampler builds a sampler with its own seeded random source.
// Temperature must be > 0; P outside (0,1) disables truncation.
func NewTopPSampler(p, temperature float64, seed int64) *TopPSampler {
	return &TopPSampler{
		P:           p,
		Temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *TopPSampler) Next(logits []float32) int {
	temp := s.Temperature
	if temp <= 0 {
		return argMax(logits)
	}

	probs := softmaxWithTemperature(logits, temp)

	candidates := make([]tokenProb, 0, len(probs))
	for i, p := range probs {
		if p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0) {
			candidates = append(candidates, tokenProb{id: i, prob: p})
		}
	}
	if len(candidates) == 0 {
		return argMax(logits)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].prob == candidates[j].prob {
			return candidates[i].id < candidates[j].id
		}
		return candidates[i].prob > candidates[j].prob
	})

	candidates = applyTopP(candidates, s.P)
	return s.sampleFromCandidates(candidates)
}

type tokenProb struct {
	id   int
	prob float64
}

func softmaxWithTemperature(logits []float32, temperature float64) []float64 {
	probs := make([]float64, len(logits))
	for i, v := range logits {
		probs[i] = float64(v) / temperature
	}

	maxVal := math.Inf(-1)
	for _, v := range probs {
		if v > maxVal {
			maxVal = v
		}
	}

	sum := 0.0
	for i := range probs {
		probs[i] = math.Exp(probs[i] - maxVal)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// applyTopP keeps the smallest descending-probability prefix whose cumulative
// mass reaches p and renormalizes it.
func applyTopP(candidates []tokenProb, p float64) []tokenProb {
	if p >= 1.0 || p <= 0.0 {
		return candidates
	}

	sum := 0.0
	for i, c := range candidates {
		sum += c.prob
		if sum >= p {
			selected := candidates[:i+1]

			total := 0.0
			for _, c := range selected {
				total += c.prob
			}
			for i := range selected {
				selected[i].prob /= total
			}
			return selected
		}
	}
	return candidates
}

func (s *TopPSampler) sampleFromCandidates(candidates []tokenProb) int {
	sum := 0.0
	for _, c := range candidates {
		sum += c.prob
	}

	r := s.rng.Float64() * sum
	acc := 0.0
	for _, c := range candidates {
		acc += c.prob
		if r < acc {
			return c.id
		}
	}
	return candidates[0].id
}

// applyRepetitionPenalty penalizes every token id already present in history:
// positive logits are divided by the factor, negative logits multiplied, so
// re-selection is discouraged regardless of sign.
func applyRepetitionPenalty(logits []float32, history []int, penalty float64) {
	if penalty <= 1.0 || len(history) == 0 {
		return
	}

	seen := make(map[int]struct{}, len(history))
	for _, id := range history {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if id >= 0 && id < len(logits) {
			if logits[id] > 0 {
				logits[id] /= float32(penalty)
			} else {
				logits[id] *= float32(penalty)
			}
		}
	}
}

func argMax(logits []float32) int {
	maxIdx := 0
	maxVal := float32(math.Inf(-1))
	for i, v := range logits {
		if float32(v) > maxVal && !math.IsNaN(float64(v)) {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx
}
