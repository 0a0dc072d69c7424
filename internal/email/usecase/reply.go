package usecase

import (
	"context"
	"log/slog"
)

const replyContextTopK = 3

// VectorStore retrieves context snippets relevant to a message.
type VectorStore interface {
	RetrieveContext(ctx context.Context, query string, topK int) ([]string, error)
}

// ReplyGenerator drafts a reply given a message and context snippets.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, subject, body string, contexts []string) (string, error)
}

type replySuggester struct {
	store     VectorStore
	generator ReplyGenerator
	logger    *slog.Logger
}

// NewReplySuggester creates a suggester backed by a vector store and an
// LLM gateway.
func NewReplySuggester(store VectorStore, generator ReplyGenerator, logger *slog.Logger) ReplySuggester {
	return &replySuggester{
		store:     store,
		generator: generator,
		logger:    logger.With("component", "reply"),
	}
}

// SuggestReply retrieves the most relevant context snippets and feeds
// them to the generator. A retrieval failure degrades to an uninformed
// reply rather than failing the suggestion.
func (r *replySuggester) SuggestReply(ctx context.Context, subject, body string) (string, error) {
	var contexts []string
	if r.store != nil {
		retrieved, err := r.store.RetrieveContext(ctx, subject+" "+body, replyContextTopK)
		if err != nil {
			r.logger.Warn("context retrieval failed, replying without context", "error", err)
		} else {
			contexts = retrieved
		}
	}
	return r.generator.GenerateReply(ctx, subject, body, contexts)
}
