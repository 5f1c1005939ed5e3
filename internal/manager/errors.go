package manager

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ endpointID string }

func (e tooBusyError) Error() string { return "too busy: " + e.endpointID }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// endpointNotFoundError signals a requested endpoint id absent from the registry.
type endpointNotFoundError struct{ id string }

func (e endpointNotFoundError) Error() string { return "endpoint not found: " + e.id }

func ErrEndpointNotFound(id string) error { return endpointNotFoundError{id: id} }

// IsEndpointNotFound reports whether the error indicates a missing endpoint id.
func IsEndpointNotFound(err error) bool {
	_, ok := err.(endpointNotFoundError)
	return ok
}
