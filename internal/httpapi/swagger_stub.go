//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger does nothing unless the binary is built with -tags=swagger.
// This keeps the swagger UI handler out of default builds.
func MountSwagger(r chi.Router) {}
