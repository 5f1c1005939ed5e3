// Package tokenizer provides the byte-level tokenizer used when no external
// tokenizer is configured. Ids 0-255 map to raw bytes; a small block of
// special ids follows. It round-trips arbitrary UTF-8 text.
package tokenizer

// Special token ids appended after the byte range.
const (
	PadID = 256
	BosID = 257
	EosID = 258

	// VocabSize is the total id space: 256 bytes plus the specials.
	VocabSize = 259
)

// Tokenizer converts between text and token id sequences. It is stateless
// and safe for concurrent use.
type Tokenizer struct{}

// New returns a byte-level tokenizer.
func New() *Tokenizer { return &Tokenizer{} }

// VocabSize reports the id space the tokenizer emits into.
func (t *Tokenizer) VocabSize() int { return VocabSize }

// EOSTokenID returns the end-of-sequence id.
func (t *Tokenizer) EOSTokenID() int { return EosID }

// Encode converts text into a BOS-prefixed byte id sequence. The result is
// never empty: an empty string encodes to just BOS.
func (t *Tokenizer) Encode(text string) []int {
	ids := make([]int, 0, len(text)+1)
	ids = append(ids, BosID)
	for _, b := range []byte(text) {
		ids = append(ids, int(b))
	}
	return ids
}

// Decode converts ids back to text, skipping special and out-of-range ids.
func (t *Tokenizer) Decode(ids []int) string {
	buf := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < 256 {
			buf = append(buf, byte(id))
		}
	}
	return string(buf)
}
