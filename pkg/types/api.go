package types

// GenerateRequest represents a text generation request payload.
type GenerateRequest struct {
	// Optional endpoint identifier. If empty, the server default is used.
	// example: synthetic
	Endpoint string `json:"endpoint,omitempty" example:"synthetic"`
	// Required prompt text to generate a completion for.
	// example: The alpha rhythm during rest
	Prompt string `json:"prompt" example:"The alpha rhythm during rest"`
	// Maximum number of new tokens to generate.
	// example: 64
	MaxNewTokens int `json:"max_new_tokens,omitempty" example:"64"`
	// Sampling temperature (higher = more random). Zero or negative selects
	// greedy decoding.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Repetition penalty; values > 1 discourage re-selecting emitted tokens.
	// example: 1.1
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty" example:"1.1"`
	// Force greedy decoding regardless of temperature.
	// example: false
	Greedy bool `json:"greedy,omitempty" example:"false"`
	// Random seed for reproducible sampling; 0 or omitted lets the server choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}

// GenerateFinal is the terminating NDJSON line of a generation stream.
type GenerateFinal struct {
	// Always true on the final line.
	Done bool `json:"done"`
	// Full decoded completion text.
	Content string `json:"content"`
	// Why decoding stopped (eos, max_length, cancelled).
	// example: eos
	FinishReason string `json:"finish_reason" example:"eos"`
	// Token accounting for the call.
	Usage Usage `json:"usage"`
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NoteCreateRequest stores a note together with a freshly simulated signal.
type NoteCreateRequest struct {
	// Required note text.
	// example: strong alpha burst while eyes closed
	Text string `json:"text" example:"strong alpha burst while eyes closed"`
	// Optional seed for the simulated recording; 0 picks one.
	// example: 7
	Seed int64 `json:"seed,omitempty" example:"7"`
}

// NoteResponse echoes a stored note.
type NoteResponse struct {
	// Generated note id.
	ID string `json:"id"`
	// Stored text.
	Text string `json:"text"`
	// Creation time (unix seconds).
	CreatedUnix int64 `json:"created_unix"`
	// Summary features of the simulated recording.
	Signal SignalFeatures `json:"signal"`
}

// SignalFeatures mirrors the stored recording summary.
type SignalFeatures struct {
	RMS          float64 `json:"rms"`
	PeakToPeak   float64 `json:"peak_to_peak"`
	DominantBand string  `json:"dominant_band" example:"alpha"`
	PeakFreqHz   float64 `json:"peak_freq_hz" example:"10"`
}

// SearchRequest queries stored notes by semantic similarity.
type SearchRequest struct {
	// Required query text.
	// example: relaxation with eyes closed
	Query string `json:"query" example:"relaxation with eyes closed"`
	// Number of matches to return (default 5).
	// example: 3
	TopK int `json:"top_k,omitempty" example:"3"`
}

// SearchMatch is one ranked search hit.
type SearchMatch struct {
	Note NoteResponse `json:"note"`
	// Cosine similarity in [-1, 1].
	Score float32 `json:"score"`
}

// SearchResponse wraps ranked matches.
type SearchResponse struct {
	Matches []SearchMatch `json:"matches"`
}

// EndpointsResponse wraps the list of endpoints returned by GET /endpoints.
type EndpointsResponse struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompt is required
	Error string `json:"error" example:"prompt is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a bound endpoint instance for /status.
type InstanceStatus struct {
	// ID of the endpoint this instance serves.
	EndpointID string `json:"endpoint_id"`
	// Current lifecycle state (loading, ready, draining, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	LastUsed int64 `json:"last_used_unix"`
	// Estimated resident memory in MB.
	EstMemMB int `json:"est_mem_mb"`
	// Vocabulary size recorded by the adapter (0 if not yet discovered).
	VocabSize int `json:"vocab_size"`
	// Current queue length for incoming requests.
	QueueLen int `json:"queue_len"`
	// Number of in-flight generations (0 or 1).
	Inflight int `json:"inflight"`
	// Maximum queued requests allowed before backpressure triggers.
	MaxQueueDepth int `json:"max_queue_depth"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Bound endpoint instances.
	Instances []InstanceStatus `json:"instances"`
	// Memory budget in MB across all instances (0 = unlimited).
	BudgetMB int `json:"budget_mb"`
	// Estimated used memory in MB.
	UsedMB int `json:"used_est_mb"`
	// Reserved margin in MB.
	MarginMB int `json:"margin_mb"`
	// Overall manager state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Optional top-level error message.
	Error string `json:"error,omitempty"`
	// Number of stored notes.
	Notes int `json:"notes"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
	// Total number of evictions performed to free memory.
	EvictionsTotal uint64 `json:"evictions_total"`
	// Total number of endpoint loads.
	LoadsTotal uint64 `json:"loads_total"`
}
