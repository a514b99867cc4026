package model

// Chunk is a labeled span of the source document produced by the chunker.
// Chapter or Article is "N/A" when the corresponding marker was absent.
type Chunk struct {
	Chapter  string `json:"chapter"`
	Article  string `json:"article"`
	Text     string `json:"text"`
	Metadata string `json:"metadata"`
}

// SearchResult pairs a chunk with its relevance score in percent (0-100).
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK,omitempty"`
}

// Response is the per-question answer payload. Error is empty on success;
// generation failures are reported here instead of failing the request.
type Response struct {
	Answer string         `json:"answer"`
	Chunks []SearchResult `json:"chunks"`
	Error  string         `json:"error,omitempty"`
}
