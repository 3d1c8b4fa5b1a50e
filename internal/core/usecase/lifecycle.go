package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
)

// BuildObserver receives one notification per successful index build.
type BuildObserver interface {
	RecordIndexBuild(documents int, duration time.Duration)
}

// Initializer runs the one-time corpus fetch and index build, asynchronously
// relative to process startup. Ready and Failed are terminal states; a
// failed initialization requires a process restart.
type Initializer struct {
	source    ports.PageSource
	extractor ports.PageExtractor
	index     ports.VectorIndex
	observer  BuildObserver

	mu     sync.RWMutex
	status domain.InitStatus
	errMsg string
}

func NewInitializer(
	source ports.PageSource,
	extractor ports.PageExtractor,
	index ports.VectorIndex,
	observer BuildObserver,
) *Initializer {
	return &Initializer{
		source:    source,
		extractor: extractor,
		index:     index,
		observer:  observer,
		status:    domain.StatusInitializing,
	}
}

var _ ports.ReadinessReporter = (*Initializer)(nil)

// State is a pure, non-blocking readiness query.
func (in *Initializer) State() domain.Readiness {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return domain.Readiness{Status: in.status, Err: in.errMsg}
}

// Run executes initialization once. Any unrecoverable error transitions to
// Failed and is surfaced through State rather than crashing the process.
func (in *Initializer) Run(ctx context.Context) {
	start := time.Now()

	pages, err := in.source.FetchPages(ctx)
	if err != nil {
		in.fail(fmt.Errorf("fetch corpus: %w", err))
		return
	}

	docs := make([]domain.Document, 0, len(pages))
	dropped := 0
	for _, page := range pages {
		doc := in.extractor.Extract(page)
		if doc.Text == "" {
			dropped++
			continue
		}
		docs = append(docs, doc)
	}
	if dropped > 0 {
		slog.Info("init_dropped_empty_documents", "dropped", dropped, "fetched", len(pages))
	}
	if len(docs) == 0 {
		in.fail(domain.WrapError(domain.ErrEmptyCorpus, "initialize", errors.New("corpus yielded no usable documents")))
		return
	}

	if err := in.index.Build(ctx, docs); err != nil {
		in.fail(fmt.Errorf("build index: %w", err))
		return
	}

	in.mu.Lock()
	in.status = domain.StatusReady
	in.mu.Unlock()

	elapsed := time.Since(start)
	if in.observer != nil {
		in.observer.RecordIndexBuild(in.index.Size(), elapsed)
	}
	slog.Info("init_complete", "documents", in.index.Size(), "duration_ms", elapsed.Milliseconds())
}

func (in *Initializer) fail(err error) {
	in.mu.Lock()
	in.status = domain.StatusFailed
	in.errMsg = err.Error()
	in.mu.Unlock()
	slog.Error("init_failed", "error", err)
}
