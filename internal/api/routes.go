package api

import (
	"github.com/gofiber/fiber/v2"

	"legalrag/internal/config"
	"legalrag/internal/service"
)

func RegisterRoutes(app *fiber.App, rag *service.RAGService, llm *service.LLMClient, cfg *config.Config) {
	h := NewHandler(rag, llm, cfg)

	app.Get("/health", h.Health)
	app.Get("/models", h.ListModels)
	app.Post("/api/load", h.LoadDocument)
	app.Post("/api/upload", h.UploadDocument)
	app.Post("/api/ask", h.Ask)
}
