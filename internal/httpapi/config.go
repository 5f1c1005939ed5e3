package httpapi

import (
	"slices"
	"time"
)

const defaultMaxBodyBytes = 1 << 20

// maxBodyBytes caps request bodies on JSON endpoints.
var maxBodyBytes int64 = defaultMaxBodyBytes

// SetMaxBodyBytes overrides the request body cap. Non-positive values restore
// the 1 MiB default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// generateTimeout bounds how long a single /generate request may run. Zero
// leaves only server and connection timeouts in effect.
var generateTimeout time.Duration

// SetGenerateTimeoutSeconds sets the /generate timeout (0 disables).
func SetGenerateTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	generateTimeout = time.Duration(sec) * time.Second
}

// CORS is opt-in; without SetCORSOptions no CORS middleware is mounted.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures the CORS middleware mounted by NewMux.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = slices.Clone(origins)
	corsAllowedMethods = slices.Clone(methods)
	corsAllowedHeaders = slices.Clone(headers)
}
