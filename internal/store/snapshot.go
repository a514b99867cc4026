package store

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"legalrag/internal/model"
)

const snapshotVersion = 1

// snapshot is the on-disk record. The header fields (Version, Model,
// Dimension, NumChunks) are validated before any vector data is trusted.
type snapshot struct {
	Version    int
	Model      string
	Dimension  int
	NumChunks  int
	Chunks     []model.Chunk
	Embeddings [][]float32
}

// Save serializes the chunk list and the normalized embedding matrix to
// path, creating parent directories as needed. Fails with ErrNotBuilt if
// nothing has been indexed.
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.chunks) == 0 {
		return ErrNotBuilt
	}
	snap := snapshot{
		Version:    snapshotVersion,
		Model:      x.embedder.Model(),
		Dimension:  x.dimension,
		NumChunks:  len(x.chunks),
		Chunks:     x.chunks,
		Embeddings: x.embeddings,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Load restores a snapshot previously written by Save. On any failure —
// missing or unreadable file, corrupt record, or a snapshot produced by a
// different embedding model — the live index is left untouched and the
// caller can fall back to a full Build.
func (x *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.Model != x.embedder.Model() {
		return fmt.Errorf("%w: snapshot has %q, index uses %q",
			ErrModelMismatch, snap.Model, x.embedder.Model())
	}
	if snap.NumChunks != len(snap.Chunks) || len(snap.Chunks) != len(snap.Embeddings) {
		return fmt.Errorf("corrupt snapshot: %d chunks, %d vectors, header says %d",
			len(snap.Chunks), len(snap.Embeddings), snap.NumChunks)
	}
	for i, v := range snap.Embeddings {
		if len(v) != snap.Dimension {
			return fmt.Errorf("corrupt snapshot: vector %d has dimension %d, want %d",
				i, len(v), snap.Dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.chunks = snap.Chunks
	x.embeddings = snap.Embeddings
	x.dimension = snap.Dimension
	return nil
}
