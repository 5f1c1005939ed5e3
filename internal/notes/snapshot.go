package notes

import (
	"os"

	"github.com/coder/hnsw"
	json "github.com/goccy/go-json"
)

type snapshotFile struct {
	Model   string          `json:"model"`
	Entries []snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	Note      Note      `json:"note"`
	Embedding []float32 `json:"embedding"`
}

// Save writes the current notes and embeddings to disk, tagged with the
// embedding model that produced the vectors.
func (s *Store) Save(path, model string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]snapshotEntry, 0, len(s.notes))
	for id, note := range s.notes {
		vec, ok := s.graph.Lookup(id)
		if !ok {
			continue
		}
		entries = append(entries, snapshotEntry{Note: note, Embedding: vec})
	}

	data, err := json.Marshal(snapshotFile{Model: model, Entries: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load restores a previously saved snapshot. A snapshot produced by a
// different embedding model is silently skipped: its vectors would not be
// comparable with freshly embedded queries.
func (s *Store) Load(path, model string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return err
	}
	if sf.Model != model {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make([]hnsw.Node[string], 0, len(sf.Entries))
	for _, e := range sf.Entries {
		nodes = append(nodes, hnsw.MakeNode(e.Note.ID, e.Embedding))
		s.notes[e.Note.ID] = e.Note
	}
	if len(nodes) > 0 {
		s.graph.Add(nodes...)
	}
	return nil
}
