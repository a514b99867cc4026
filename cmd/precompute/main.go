// Command precompute builds the vector index for a document once and saves
// it as a snapshot, so the server can start without re-embedding.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"legalrag/internal/chunker"
	"legalrag/internal/config"
	"legalrag/internal/pdf"
	"legalrag/internal/service"
	"legalrag/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		docPath string
		outPath string
	)
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.StringVar(&docPath, "doc", "", "document to index (defaults to the configured document)")
	flag.StringVar(&outPath, "out", "", "snapshot output path (defaults to the configured snapshot path)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if docPath == "" {
		docPath = cfg.Document.Path
	}
	if outPath == "" {
		outPath = cfg.Document.SnapshotPath
	}

	text, err := pdf.ExtractText(docPath)
	if err != nil {
		log.Fatalf("extract %s: %v", docPath, err)
	}
	log.Printf("extracted %d characters from %s", len(text), docPath)

	chunks := chunker.Chunk(text, cfg.Document.MinChunkSize)
	if len(chunks) == 0 {
		log.Fatalf("no chunks above %d characters, nothing to index", cfg.Document.MinChunkSize)
	}
	log.Printf("created %d chunks", len(chunks))

	llm := service.NewLLMClient(cfg)
	index := store.NewIndex(llm)
	if err := index.Build(context.Background(), chunks); err != nil {
		log.Fatalf("build index: %v", err)
	}
	if err := index.Save(outPath); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	log.Printf("saved snapshot with %d chunks (model=%s) to %s", index.Count(), index.Model(), outPath)
}
