package chroma

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	"github.com/google/uuid"

	"onebox-backend/pkg/config"
)

const collectionName = "email_contexts"

// Client stores and retrieves reply-suggestion context snippets in a
// Chroma collection embedded with Gemini.
type Client struct {
	client     chroma.Client
	collection chroma.Collection
	logger     *slog.Logger
}

// NewClient connects to Chroma Cloud and prepares the context collection.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	// The embedding function reads the Gemini key from the environment.
	if cfg.GeminiAPIKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	}
	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	var client chroma.Client
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		context.Background(),
		collectionName,
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	logger.Info("chroma collection ready", "collection", collectionName)

	return &Client{
		client:     client,
		collection: collection,
		logger:     logger.With("component", "chroma"),
	}, nil
}

// SeedContext upserts the configured outreach agenda under a fixed id so
// restarts do not accumulate duplicates.
func (c *Client) SeedContext(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	metadata, err := chroma.NewDocumentMetadataFromMap(map[string]interface{}{
		"type": "agenda",
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}
	err = c.collection.Upsert(
		ctx,
		chroma.WithIDs(chroma.DocumentID("agenda_context")),
		chroma.WithMetadatas(metadata),
		chroma.WithTexts(text),
	)
	if err != nil {
		return fmt.Errorf("failed to seed context: %w", err)
	}
	return nil
}

// AddContext stores a custom context snippet and returns its document id.
func (c *Client) AddContext(ctx context.Context, text string, metadata map[string]interface{}) (string, error) {
	id := uuid.New().String()

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	docMeta, err := chroma.NewDocumentMetadataFromMap(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata: %w", err)
	}

	err = c.collection.Upsert(
		ctx,
		chroma.WithIDs(chroma.DocumentID(id)),
		chroma.WithMetadatas(docMeta),
		chroma.WithTexts(text),
	)
	if err != nil {
		return "", fmt.Errorf("failed to add context: %w", err)
	}

	c.logger.Info("custom context added", "id", id)
	return id, nil
}

// RetrieveContext returns the topK context snippets most relevant to query.
func (c *Client) RetrieveContext(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 3
	}

	results, err := c.collection.Query(
		ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	if results == nil || results.CountGroups() == 0 {
		return nil, nil
	}

	groups := results.GetDocumentsGroups()
	if len(groups) == 0 {
		return nil, nil
	}

	snippets := make([]string, 0, len(groups[0]))
	for _, doc := range groups[0] {
		snippets = append(snippets, doc.ContentString())
	}
	return snippets, nil
}
