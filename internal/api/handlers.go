package api

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"legalrag/internal/config"
	"legalrag/internal/model"
	"legalrag/internal/service"
	"legalrag/internal/store"
	"legalrag/internal/util"
)

// Handler holds the request handler dependencies.
type Handler struct {
	rag *service.RAGService
	llm *service.LLMClient
	cfg *config.Config
}

func NewHandler(rag *service.RAGService, llm *service.LLMClient, cfg *config.Config) *Handler {
	return &Handler{rag: rag, llm: llm, cfg: cfg}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// ListModels proxies the model list of the configured LLM endpoint.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	models, err := h.llm.ListModels(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(models)
}

// LoadDocument indexes the bundled document, preferring the precomputed
// snapshot when it is present and compatible.
func (h *Handler) LoadDocument(c *fiber.Ctx) error {
	cfg := h.cfg.Document
	if err := h.rag.Setup(c.UserContext(), cfg.Path, cfg.SnapshotPath); err != nil {
		log.Printf("load document error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"document": filepath.Base(cfg.Path),
		"chunks":   h.rag.Index().Count(),
	})
}

// UploadDocument accepts a PDF or text file and rebuilds the index from it.
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "file is required (form field: file)"})
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		log.Printf("mkdir error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to prepare storage"})
	}
	savePath := filepath.Join(h.cfg.UploadDir, util.Timestamped(file.Filename))
	if err := c.SaveFile(file, savePath); err != nil {
		log.Printf("save file error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save file"})
	}

	if err := h.rag.Setup(c.UserContext(), savePath, ""); err != nil {
		log.Printf("upload setup error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if h.rag.Index().Count() == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "no chunks created from document"})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"document": file.Filename,
		"chunks":   h.rag.Index().Count(),
	})
}

// Ask answers a question over the currently indexed document.
func (h *Handler) Ask(c *fiber.Ctx) error {
	var req model.AskRequest
	if err := c.BodyParser(&req); err != nil || req.Question == "" {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request, expected JSON: {\"question\":\"...\"}"})
	}
	k := req.TopK
	if k <= 0 {
		k = h.cfg.Document.DefaultTopK
	}

	resp, err := h.rag.Answer(c.UserContext(), req.Question, k)
	if err != nil {
		if errors.Is(err, store.ErrNotBuilt) {
			return c.Status(400).JSON(fiber.Map{"error": "no document loaded"})
		}
		log.Printf("ask error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}
