package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"legalrag/internal/config"
)

// LLMClient talks to an OpenAI-compatible endpoint (LM Studio, Ollama,
// OpenAI) for both embeddings and chat generation.
type LLMClient struct {
	client    *openai.Client
	embedName string
	chatName  string
	gen       config.GenerationConfig
}

func NewLLMClient(cfg *config.Config) *LLMClient {
	oaiCfg := openai.DefaultConfig(cfg.APIKey())
	oaiCfg.BaseURL = cfg.LLM.BaseURL
	client := openai.NewClientWithConfig(oaiCfg)

	return &LLMClient{
		client:    client,
		embedName: cfg.LLM.EmbedModel,
		chatName:  cfg.LLM.ChatModel,
		gen:       cfg.LLM.Generation,
	}
}

// Model returns the embedding model identifier recorded in snapshots.
func (l *LLMClient) Model() string { return l.embedName }

// Embed returns the embedding vector for a single text.
func (l *LLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := l.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request, returned in input order.
func (l *LLMClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := l.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(l.embedName),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d items for %d inputs", len(resp.Data), len(texts))
	}
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// Generate runs one chat completion with the configured low-temperature,
// bounded-length parameters and returns the trimmed answer text.
func (l *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.chatName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: l.gen.Temperature,
		TopP:        l.gen.TopP,
		MaxTokens:   l.gen.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the models available at the configured endpoint.
func (l *LLMClient) ListModels(ctx context.Context) ([]openai.Model, error) {
	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Models, nil
}
