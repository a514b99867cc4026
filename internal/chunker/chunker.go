package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"legalrag/internal/model"
)

// DefaultMinChunkSize is the trimmed-length threshold below which a span is dropped.
const DefaultMinChunkSize = 100

var (
	chapterRe = regexp.MustCompile(`(?i)chapter\s+[IVXLCDM]+`)
	articleRe = regexp.MustCompile(`(?i)article\s+\d+`)
)

// Chunk splits a legal document into chapter/article chunks.
//
// Each chapter span runs from its marker to the next chapter marker (or end
// of text). Chapters containing article markers emit one chunk per article
// span; chapters without articles emit a single chunk for the whole span.
// Spans whose trimmed text is not longer than minChunkSize are dropped.
// If the text contains no chapter markers at all, it falls back to
// blank-line paragraphs labeled "Section N".
func Chunk(text string, minChunkSize int) []model.Chunk {
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}

	var chunks []model.Chunk

	chapterLocs := chapterRe.FindAllStringIndex(text, -1)
	for i, loc := range chapterLocs {
		start := loc[0]
		end := len(text)
		if i+1 < len(chapterLocs) {
			end = chapterLocs[i+1][0]
		}
		chapterText := text[start:end]
		chapterName := text[loc[0]:loc[1]]

		articleLocs := articleRe.FindAllStringIndex(chapterText, -1)
		if len(articleLocs) == 0 {
			body := strings.TrimSpace(chapterText)
			if len(body) > minChunkSize {
				chunks = append(chunks, model.Chunk{
					Chapter:  chapterName,
					Article:  "N/A",
					Text:     body,
					Metadata: chapterName,
				})
			}
			continue
		}

		for j, aloc := range articleLocs {
			aStart := aloc[0]
			aEnd := len(chapterText)
			if j+1 < len(articleLocs) {
				aEnd = articleLocs[j+1][0]
			}
			articleName := chapterText[aloc[0]:aloc[1]]
			body := strings.TrimSpace(chapterText[aStart:aEnd])
			if len(body) > minChunkSize {
				chunks = append(chunks, model.Chunk{
					Chapter:  chapterName,
					Article:  articleName,
					Text:     body,
					Metadata: chapterName + " - " + articleName,
				})
			}
		}
	}

	if len(chapterLocs) == 0 {
		// No structural markers: fall back to paragraph chunks. Paragraph
		// position is kept in the label even when earlier paragraphs are
		// dropped for being too short.
		paragraphs := strings.Split(text, "\n\n")
		for i, para := range paragraphs {
			body := strings.TrimSpace(para)
			if len(body) > minChunkSize {
				label := fmt.Sprintf("Section %d", i+1)
				chunks = append(chunks, model.Chunk{
					Chapter:  "N/A",
					Article:  label,
					Text:     body,
					Metadata: label,
				})
			}
		}
	}

	return chunks
}
