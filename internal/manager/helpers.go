package manager

import (
	"os"

	"neurod/pkg/types"
)

// Helper: find endpoint in registry by id.
func (m *Manager) getEndpointByID(id string) (types.Endpoint, bool) {
	for _, ep := range m.registry {
		if ep.ID == id {
			return ep, true
		}
	}
	return types.Endpoint{}, false
}

// Helper: estimate resident memory based on session file size (MB).
func (m *Manager) estimateMemMB(ep types.Endpoint) int {
	if ep.Path == "" {
		// synthetic endpoints are negligible but must not bypass budget checks
		return 1
	}
	fi, err := os.Stat(ep.Path)
	if err != nil {
		// If we cannot stat the file, return a conservative minimum of 1MB
		// to avoid bypassing budget checks due to an unknown size.
		return 1
	}
	mb := int(fi.Size() / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}
