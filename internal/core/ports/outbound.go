package ports

import (
	"context"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

// PageSource fetches the raw corpus from the external wiki.
type PageSource interface {
	FetchPages(ctx context.Context) ([]domain.RawPage, error)
}

// PageExtractor converts a raw page into a normalized plain-text document.
// It degrades gracefully on malformed markup and never fails.
type PageExtractor interface {
	Extract(page domain.RawPage) domain.Document
}

// Embedder builds vectors for document texts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores document embeddings and serves similarity queries.
// Build is callable exactly once; the index is read-only afterwards.
type VectorIndex interface {
	Build(ctx context.Context, docs []domain.Document) error
	Query(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error)
	Size() int
}

// AnswerGenerator creates the final user-facing answer from the question,
// the paired conversation history, and the retrieved grounding context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, history []domain.Exchange, docs []domain.ScoredDocument) (string, error)
}

// ConversationLog is the bounded, process-local chat history.
type ConversationLog interface {
	Append(turn domain.Turn)
	AppendExchange(question, answer string)
	Reset()
	Snapshot() []domain.Turn
}
