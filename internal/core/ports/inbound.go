package ports

import (
	"context"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

// ChatAnswerer is the inbound contract for grounded question answering.
// Callers are expected to check readiness before invoking Answer.
type ChatAnswerer interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// ReadinessReporter exposes the one-time initialization state. State never
// blocks.
type ReadinessReporter interface {
	State() domain.Readiness
}
