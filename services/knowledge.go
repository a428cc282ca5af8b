package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// KnowledgeService answers "what does the knowledge base say about X":
// it embeds the query and pulls the top matches from the Pinecone index the
// indexing pipeline maintains. Unconfigured, it degrades to no context and
// the assistant answers from its system prompt alone.
type KnowledgeService struct {
	appContext.DefaultService

	embeddings     *openai.Client
	embeddingModel string

	indexHost string
	apiKey    string
	topK      int

	httpClient *http.Client
}

const KNOWLEDGE_SVC = "knowledge_svc"

type pineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches []pineconeMatch `json:"matches"`
}

type pineconeMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

func (svc KnowledgeService) Id() string {
	return KNOWLEDGE_SVC
}

func (svc *KnowledgeService) Configure(ctx *appContext.Context) error {
	svc.indexHost = os.Getenv("PINECONE_INDEX_HOST")
	svc.apiKey = os.Getenv("PINECONE_API_KEY")

	svc.embeddingModel = os.Getenv("EMBEDDING_MODEL")
	if svc.embeddingModel == "" {
		svc.embeddingModel = "text-embedding-3-small"
	}

	svc.topK = 8
	svc.httpClient = &http.Client{Timeout: 10 * time.Second}

	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg := openai.DefaultConfig(key)
		if base := os.Getenv("EMBEDDING_BASE_URL"); base != "" {
			cfg.BaseURL = base
		}
		svc.embeddings = openai.NewClientWithConfig(cfg)
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *KnowledgeService) Start() error {
	if !svc.Enabled() {
		log.Warn("Knowledge retrieval not configured - assistant will answer without RAG context")
	}
	return nil
}

func (svc *KnowledgeService) Enabled() bool {
	return svc.indexHost != "" && svc.apiKey != "" && svc.embeddings != nil
}

// Search embeds the query, pulls the top matches from the index and
// formats them as a context block for the prompt. Retrieval failures are
// returned to the caller, which treats them as "no context" rather than a
// user-facing error.
func (svc *KnowledgeService) Search(ctx context.Context, query string) (string, error) {
	if !svc.Enabled() {
		return "", nil
	}

	vector, err := svc.embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	matches, err := svc.query(ctx, vector)
	if err != nil {
		return "", fmt.Errorf("querying index: %w", err)
	}

	if len(matches) == 0 {
		return "No relevant information found in knowledge base.", nil
	}

	parts := make([]string, 0, len(matches))
	sources := make(map[string]struct{})
	for _, m := range matches {
		content := strings.TrimSpace(m.Metadata["text"])
		if content == "" {
			continue
		}

		source := m.Metadata["source"]
		if source == "" {
			source = "unknown"
		}
		sources[source] = struct{}{}

		parts = append(parts, fmt.Sprintf("[Source: %s | Relevance: %.3f]\n%s", source, m.Score, content))
	}

	log.Infof("RAG retrieved %d chunks from %d sources for: %.50s", len(parts), len(sources), query)
	return strings.Join(parts, "\n\n---\n\n"), nil
}

func (svc *KnowledgeService) embed(ctx context.Context, query string) ([]float32, error) {
	resp, err := svc.embeddings.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{query},
		Model: openai.EmbeddingModel(svc.embeddingModel),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	return resp.Data[0].Embedding, nil
}

func (svc *KnowledgeService) query(ctx context.Context, vector []float32) ([]pineconeMatch, error) {
	body, err := sonic.Marshal(pineconeQueryRequest{
		Vector:          vector,
		TopK:            svc.topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	url := svc.indexHost
	if !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}
	url += "/query"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Key", svc.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pinecone query returned status %d", resp.StatusCode)
	}

	var parsed pineconeQueryResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	return parsed.Matches, nil
}
