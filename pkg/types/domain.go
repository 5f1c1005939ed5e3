package types

// Known endpoint session formats.
const (
	FormatONNX      = "onnx"
	FormatSynthetic = "synthetic"
)

// Endpoint describes a discoverable inference session on disk (or the
// built-in synthetic one).
type Endpoint struct {
	// Stable identifier for the endpoint.
	// example: distilgpt2.onnx
	ID string `json:"id" example:"distilgpt2.onnx"`
	// Human-friendly name.
	Name string `json:"name"`
	// Absolute path to the session file on disk; empty for the synthetic
	// endpoint.
	Path string `json:"path,omitempty"`
	// Session format (onnx or synthetic).
	// example: onnx
	Format string `json:"format,omitempty" example:"onnx"`
}
