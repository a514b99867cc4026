package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"legalrag/internal/model"
)

// fakeEmbedder is a deterministic in-process embedder. Texts listed in vecs
// get fixed vectors; anything else gets a byte-histogram embedding, so
// identical texts always map to identical vectors.
type fakeEmbedder struct {
	model string
	vecs  map[string][]float32
	dim   int
	calls int
	err   error
}

func newFakeEmbedder(model string) *fakeEmbedder {
	return &fakeEmbedder{model: model, dim: 16}
}

func (f *fakeEmbedder) Model() string { return f.model }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vecs[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}
	v := make([]float32, f.dim)
	for i := 0; i < len(text); i++ {
		v[int(text[i])%f.dim]++
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func testChunks() []model.Chunk {
	texts := []string{
		"The controller shall implement appropriate technical measures.",
		"Personal data shall be processed lawfully, fairly and transparently.",
		"The data subject shall have the right to obtain confirmation.",
		"Supervisory authorities shall cooperate with each other.",
	}
	chunks := make([]model.Chunk, len(texts))
	for i, txt := range texts {
		chunks[i] = model.Chunk{
			Chapter:  "Chapter I",
			Article:  "Article 1",
			Text:     txt,
			Metadata: "Chapter I - Article 1",
		}
	}
	return chunks
}

func TestSearchTopKProperties(t *testing.T) {
	idx := NewIndex(newFakeEmbedder("fake-v1"))
	chunks := testChunks()
	if err := idx.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for k := 0; k <= len(chunks)+2; k++ {
		res, err := idx.Search(context.Background(), "personal data rights", k)
		if err != nil {
			t.Fatalf("Search(k=%d) error: %v", k, err)
		}
		want := k
		if want > len(chunks) {
			want = len(chunks)
		}
		if want < 0 {
			want = 0
		}
		if len(res) != want {
			t.Errorf("Search(k=%d) returned %d results, want %d", k, len(res), want)
		}
		for i := 1; i < len(res); i++ {
			if res[i].Score > res[i-1].Score {
				t.Errorf("Search(k=%d) results not descending at %d: %v > %v",
					k, i, res[i].Score, res[i-1].Score)
			}
		}
		for _, r := range res {
			if r.Score < 0 || r.Score > 100 {
				t.Errorf("score %v out of [0,100]", r.Score)
			}
		}
	}
}

func TestSearchExactTextRanksFirst(t *testing.T) {
	idx := NewIndex(newFakeEmbedder("fake-v1"))
	chunks := testChunks()
	if err := idx.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	query := chunks[2].Text
	res, err := idx.Search(context.Background(), query, 3)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res[0].Chunk.Text != query {
		t.Fatalf("top result = %q, want the queried chunk", res[0].Chunk.Text)
	}
	if res[0].Score < 99 {
		t.Errorf("exact match score = %v, want >= 99", res[0].Score)
	}
}

func TestSearchTieBreakByInsertionOrder(t *testing.T) {
	emb := newFakeEmbedder("fake-v1")
	emb.vecs = map[string][]float32{
		"first":  {1, 0, 0},
		"second": {0, 1, 0},
		"query":  {1, 1, 0},
	}
	idx := NewIndex(emb)
	chunks := []model.Chunk{
		{Text: "first", Metadata: "Section 1"},
		{Text: "second", Metadata: "Section 2"},
	}
	if err := idx.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	res, err := idx.Search(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res[0].Chunk.Text != "first" || res[1].Chunk.Text != "second" {
		t.Errorf("tie not broken by insertion order: got %q then %q",
			res[0].Chunk.Text, res[1].Chunk.Text)
	}
}

func TestSearchClampsNegativeSimilarity(t *testing.T) {
	emb := newFakeEmbedder("fake-v1")
	emb.vecs = map[string][]float32{
		"opposite": {-1, 0, 0},
		"query":    {1, 0, 0},
	}
	idx := NewIndex(emb)
	if err := idx.Build(context.Background(), []model.Chunk{{Text: "opposite"}}); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	res, err := idx.Search(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("anti-correlated chunk must still be returned, got %d results", len(res))
	}
	if res[0].Score != 0 {
		t.Errorf("negative similarity score = %v, want clamped to 0", res[0].Score)
	}
}

func TestSearchUnbuilt(t *testing.T) {
	emb := newFakeEmbedder("fake-v1")
	idx := NewIndex(emb)

	if _, err := idx.Search(context.Background(), "anything", 3); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("Search() error = %v, want ErrNotBuilt", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times before the built check", emb.calls)
	}
}

func TestBuildEmptyResetsIndex(t *testing.T) {
	idx := NewIndex(newFakeEmbedder("fake-v1"))
	if err := idx.Build(context.Background(), testChunks()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if err := idx.Build(context.Background(), nil); err != nil {
		t.Fatalf("Build(nil) error: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("Count() = %d after empty build, want 0", idx.Count())
	}
	if _, err := idx.Search(context.Background(), "q", 1); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Search() after empty build = %v, want ErrNotBuilt", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	query := "rights of the data subject"

	src := NewIndex(newFakeEmbedder("fake-v1"))
	if err := src.Build(context.Background(), testChunks()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	before, err := src.Search(context.Background(), query, 3)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if err := src.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	dst := NewIndex(newFakeEmbedder("fake-v1"))
	if err := dst.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if dst.Count() != src.Count() {
		t.Fatalf("Count() = %d after load, want %d", dst.Count(), src.Count())
	}
	after, err := dst.Search(context.Background(), query, 3)
	if err != nil {
		t.Fatalf("Search() after load error: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("result count changed across round trip: %d vs %d", len(after), len(before))
	}
	for i := range before {
		if after[i].Chunk != before[i].Chunk {
			t.Errorf("result %d chunk changed across round trip", i)
		}
		if math.Abs(after[i].Score-before[i].Score) > 1e-6 {
			t.Errorf("result %d score = %v, want %v", i, after[i].Score, before[i].Score)
		}
	}
}

func TestSaveUnbuilt(t *testing.T) {
	idx := NewIndex(newFakeEmbedder("fake-v1"))
	path := filepath.Join(t.TempDir(), "index.gob")
	if err := idx.Save(path); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Save() on empty index = %v, want ErrNotBuilt", err)
	}
}

func TestLoadModelMismatchKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	old := NewIndex(newFakeEmbedder("old-model"))
	if err := old.Build(context.Background(), testChunks()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if err := old.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	live := NewIndex(newFakeEmbedder("new-model"))
	liveChunks := []model.Chunk{{Text: "the only live chunk", Metadata: "Section 1"}}
	if err := live.Build(context.Background(), liveChunks); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if err := live.Load(path); !errors.Is(err, ErrModelMismatch) {
		t.Fatalf("Load() error = %v, want ErrModelMismatch", err)
	}
	if live.Count() != 1 {
		t.Fatalf("Count() = %d after failed load, want 1", live.Count())
	}
	res, err := live.Search(context.Background(), "live", 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res[0].Chunk.Text != "the only live chunk" {
		t.Errorf("live index contents changed after rejected load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	idx := NewIndex(newFakeEmbedder("fake-v1"))
	if err := idx.Load(filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Error("Load() on missing file succeeded, want error")
	}
}
