package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"legalrag/internal/model"
)

var (
	// ErrNotBuilt is returned when the index is queried or saved before any
	// chunks have been embedded into it.
	ErrNotBuilt = errors.New("index not built: add chunks with Build or load a snapshot")

	// ErrModelMismatch is returned by Load when the snapshot was produced by
	// a different embedding model than the one the index is configured with.
	ErrModelMismatch = errors.New("snapshot embedding model mismatch")
)

// Embedder turns text into fixed-dimension vectors for a named model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Index is an in-memory vector index over document chunks. It owns the chunk
// list and a parallel embedding matrix: embeddings[i] always describes
// chunks[i]. Build and Load replace both atomically under the write lock;
// Search takes the read lock, so concurrent searches are safe once built.
type Index struct {
	mu         sync.RWMutex
	embedder   Embedder
	dimension  int
	chunks     []model.Chunk
	embeddings [][]float32
}

func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Model returns the identifier of the configured embedding model.
func (x *Index) Model() string { return x.embedder.Model() }

// Count returns the number of indexed chunks.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Build embeds every chunk in one batch call, L2-normalizes the vectors and
// replaces the index contents. An empty chunk list resets the index to the
// unbuilt state. An embedding failure leaves the previous contents intact.
func (x *Index) Build(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		x.mu.Lock()
		defer x.mu.Unlock()
		x.chunks = nil
		x.embeddings = nil
		x.dimension = 0
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
		l2Normalize(v)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.chunks = append([]model.Chunk(nil), chunks...)
	x.embeddings = vectors
	x.dimension = dim
	return nil
}

// Search embeds the query and returns the top min(k, N) chunks by cosine
// similarity (inner product over normalized vectors), highest first. Ties
// keep insertion order. Scores are percentages; negative similarity is
// clamped to 0 but the chunk is still returned. k <= 0 yields no results.
func (x *Index) Search(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	x.mu.RLock()
	built := len(x.chunks) > 0
	x.mu.RUnlock()
	if !built {
		return nil, ErrNotBuilt
	}
	if k <= 0 {
		return []model.SearchResult{}, nil
	}

	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	l2Normalize(vec)

	x.mu.RLock()
	defer x.mu.RUnlock()

	scores := make([]float32, len(x.embeddings))
	for i, emb := range x.embeddings {
		scores[i] = dot(emb, vec)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return scores[idxs[i]] > scores[idxs[j]]
	})

	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]model.SearchResult, 0, k)
	for _, j := range idxs[:k] {
		score := float64(scores[j]) * 100
		if score < 0 {
			score = 0
		}
		results = append(results, model.SearchResult{Chunk: x.chunks[j], Score: score})
	}
	return results, nil
}

func l2Normalize(v []float32) {
	var sum float32
	for _, f := range v {
		sum += f * f
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
