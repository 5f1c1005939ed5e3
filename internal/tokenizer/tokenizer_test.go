package tokenizer

import "testing"

func TestEncodeRoundTrip(t *testing.T) {
	tk := New()
	for _, text := range []string{"", "alpha burst at 10Hz", "ünïcode ✓"} {
		ids := tk.Encode(text)
		if len(ids) == 0 || ids[0] != BosID {
			t.Fatalf("encode %q: missing BOS prefix: %v", text, ids)
		}
		if got := tk.Decode(ids); got != text {
			t.Fatalf("round trip %q -> %q", text, got)
		}
	}
}

func TestDecodeSkipsSpecials(t *testing.T) {
	tk := New()
	if got := tk.Decode([]int{BosID, 'h', 'i', EosID, PadID}); got != "hi" {
		t.Fatalf("expected specials stripped, got %q", got)
	}
}

func TestIdsWithinVocab(t *testing.T) {
	tk := New()
	for _, id := range tk.Encode("every byte \x00\xff") {
		if id < 0 || id >= VocabSize {
			t.Fatalf("id %d outside vocab", id)
		}
	}
}
