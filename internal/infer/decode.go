package infer

import "context"

// StopReason explains why a decode call left the Running state.
type StopReason string

const (
	StopEndOfSequence StopReason = "eos"
	StopMaxLength     StopReason = "max_length"
	StopCancelled     StopReason = "cancelled"
)

// Config is the immutable per-call decoding configuration. It must not be
// mutated after Decode starts.
type Config struct {
	// MaxNewTokens bounds the number of generated tokens. Zero yields an
	// empty result without touching the endpoint.
	MaxNewTokens int
	// Policy selects the next token; nil means Greedy.
	Policy Policy
	// RepetitionPenalty > 1 discourages re-selecting tokens already present
	// anywhere in the working sequence. Values <= 1 disable it.
	RepetitionPenalty float64
	// EOSID stops generation when produced. Negative disables the check.
	EOSID int
}

// Result is the completed generation: only newly produced tokens (prompt
// excluded) plus the reason decoding stopped.
type Result struct {
	Tokens []int
	Reason StopReason
}

// Decoder owns the autoregressive generation state machine. Each step feeds
// the full working sequence through the adapter, penalizes repeats, selects
// the next token by policy, and checks stop conditions. A Decoder holds no
// per-call state; independent Decode calls may run concurrently, each owning
// its working sequence.
type Decoder struct {
	adapter *Adapter
}

// NewDecoder builds a decoder over the given adapter.
func NewDecoder(a *Adapter) *Decoder { return &Decoder{adapter: a} }

// Decode runs the generation loop to completion. See DecodeStream.
func (d *Decoder) Decode(ctx context.Context, promptTokens []int, cfg Config) (Result, error) {
	return d.DecodeStream(ctx, promptTokens, cfg, nil)
}

// DecodeStream runs the generation loop, invoking onToken (when non-nil)
// after each appended token. An onToken error aborts the loop and is
// returned as-is.
//
// Cancellation is observed between steps only: a context cancelled mid-loop
// yields the consistent partial suffix with reason StopCancelled and a nil
// error. Adapter failures (unavailable endpoint, shape mismatch, timeout)
// abort immediately; the failed step's tentative token is never appended and
// no partial result is returned alongside the error.
func (d *Decoder) DecodeStream(ctx context.Context, promptTokens []int, cfg Config, onToken func(id int) error) (Result, error) {
	if len(promptTokens) == 0 {
		return Result{}, ErrInvalidPrompt("empty prompt")
	}
	if cfg.MaxNewTokens <= 0 {
		return Result{Tokens: []int{}, Reason: StopMaxLength}, nil
	}

	policy := cfg.Policy
	if policy == nil {
		policy = Greedy{}
	}

	work := make([]int, len(promptTokens), len(promptTokens)+cfg.MaxNewTokens)
	copy(work, promptTokens)
	promptLen := len(promptTokens)

	for generated := 0; generated < cfg.MaxNewTokens; generated++ {
		if ctx.Err() != nil {
			return Result{Tokens: suffix(work, promptLen), Reason: StopCancelled}, nil
		}

		row, err := d.adapter.LastLogits(ctx, work)
		if err != nil {
			return Result{}, err
		}

		applyRepetitionPenalty(row, work, cfg.RepetitionPenalty)

		next := policy.Next(row)
		work = append(work, next)

		if onToken != nil {
			if err := onToken(next); err != nil {
				return Result{}, err
			}
		}

		if cfg.EOSID >= 0 && next == cfg.EOSID {
			return Result{Tokens: suffix(work, promptLen), Reason: StopEndOfSequence}, nil
		}
	}
	return Result{Tokens: suffix(work, promptLen), Reason: StopMaxLength}, nil
}

func suffix(work []int, promptLen int) []int {
	out := make([]int, len(work)-promptLen)
	copy(out, work[promptLen:])
	return out
}
