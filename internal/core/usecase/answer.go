package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
)

const (
	defaultTopK          = 4
	defaultExcerptLength = 200
	excerptMarker        = "..."
)

// AnswerUseCase runs one retrieval-augmented answer round trip: retrieve
// grounding documents, format the bounded history, generate, attach source
// excerpts, and record the exchange. The conversation log is only touched
// after generation succeeds.
type AnswerUseCase struct {
	index        ports.VectorIndex
	generator    ports.AnswerGenerator
	conversation ports.ConversationLog
	topK         int
	excerptLen   int
}

func NewAnswerUseCase(
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	conversation ports.ConversationLog,
	topK int,
	excerptLen int,
) *AnswerUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	if excerptLen <= 0 {
		excerptLen = defaultExcerptLength
	}
	return &AnswerUseCase{
		index:        index,
		generator:    generator,
		conversation: conversation,
		topK:         topK,
		excerptLen:   excerptLen,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("question is required"))
	}

	retrieved, err := uc.index.Query(ctx, question, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	history := PairExchanges(uc.conversation.Snapshot())

	text, err := uc.generator.GenerateAnswer(ctx, question, history, retrieved)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "answer", err)
	}

	sources := make([]domain.Source, 0, len(retrieved))
	for _, hit := range retrieved {
		sources = append(sources, domain.Source{
			Title:   hit.Document.Title,
			URL:     hit.Document.URL,
			Excerpt: Excerpt(hit.Document.Text, uc.excerptLen),
		})
	}

	uc.conversation.AppendExchange(question, text)

	return &domain.Answer{Text: text, Sources: sources}, nil
}

// Excerpt returns the first limit characters of text, with a truncation
// marker appended when the text was cut.
func Excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + excerptMarker
}
