package main

import (
	"flag"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"legalrag/internal/api"
	"legalrag/internal/config"
	"legalrag/internal/pdf"
	"legalrag/internal/service"
	"legalrag/internal/store"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	llm := service.NewLLMClient(cfg)
	index := store.NewIndex(llm)
	rag := service.NewRAGService(index, llm, pdf.ExtractText, cfg.Document.MinChunkSize)

	app := fiber.New()
	api.RegisterRoutes(app, rag, llm, cfg)

	log.Printf("server started at %s (embed=%s chat=%s)", cfg.ServerAddr, cfg.LLM.EmbedModel, cfg.LLM.ChatModel)
	log.Fatal(app.Listen(cfg.ServerAddr))
}
