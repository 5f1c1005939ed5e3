// Package registry discovers inference endpoint sessions on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neurod/internal/common/fsutil"
	"neurod/pkg/types"
)

// Scanner builds a registry from a directory of session files.
type Scanner struct {
	// ext is the session file extension to accept, lowercase with dot.
	ext    string
	format string
}

// NewONNXScanner accepts *.onnx session files.
func NewONNXScanner() *Scanner { return &Scanner{ext: ".onnx", format: types.FormatONNX} }

// Scan walks dir (with ~ expansion) and returns one endpoint per matching
// file. ID is the full filename (including extension); Path is the absolute
// file path.
func (s *Scanner) Scan(dir string) ([]types.Endpoint, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var eps []types.Endpoint
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), s.ext) {
			continue
		}
		eps = append(eps, types.Endpoint{
			ID:     name,
			Name:   name,
			Path:   filepath.Join(abs, name),
			Format: s.format,
		})
	}
	return eps, nil
}

// LoadDir scans dir for *.onnx sessions with the default scanner.
func LoadDir(dir string) ([]types.Endpoint, error) {
	return NewONNXScanner().Scan(dir)
}

// WithSynthetic prepends the built-in synthetic endpoint so a fresh install
// can serve generations without any session files.
func WithSynthetic(eps []types.Endpoint) []types.Endpoint {
	out := make([]types.Endpoint, 0, len(eps)+1)
	out = append(out, types.Endpoint{ID: "synthetic", Name: "synthetic", Format: types.FormatSynthetic})
	return append(out, eps...)
}
