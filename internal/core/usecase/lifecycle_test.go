package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

type sourceFake struct {
	pages []domain.RawPage
	err   error
}

func (f *sourceFake) FetchPages(context.Context) ([]domain.RawPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type extractorFake struct{}

func (extractorFake) Extract(page domain.RawPage) domain.Document {
	return domain.Document{ID: page.ID, Title: page.Title, Text: page.Body}
}

type buildIndexFake struct {
	err      error
	gotDocs  []domain.Document
	buildRan bool
}

func (f *buildIndexFake) Build(_ context.Context, docs []domain.Document) error {
	f.buildRan = true
	f.gotDocs = docs
	return f.err
}
func (f *buildIndexFake) Query(context.Context, string, int) ([]domain.ScoredDocument, error) {
	return nil, nil
}
func (f *buildIndexFake) Size() int { return len(f.gotDocs) }

type observerFake struct {
	docs int
	dur  time.Duration
}

func (f *observerFake) RecordIndexBuild(documents int, duration time.Duration) {
	f.docs = documents
	f.dur = duration
}

func TestInitializerStartsNotReady(t *testing.T) {
	in := NewInitializer(&sourceFake{}, extractorFake{}, &buildIndexFake{}, nil)
	if st := in.State(); st.Status != domain.StatusInitializing || st.Err != "" {
		t.Fatalf("unexpected initial state %+v", st)
	}
}

func TestInitializerReachesReady(t *testing.T) {
	index := &buildIndexFake{}
	observer := &observerFake{}
	in := NewInitializer(&sourceFake{pages: []domain.RawPage{
		{ID: "1", Title: "Setup Guide", Body: "install steps"},
		{ID: "2", Title: "Empty", Body: ""},
	}}, extractorFake{}, index, observer)

	in.Run(context.Background())

	if st := in.State(); st.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %+v", st)
	}
	if len(index.gotDocs) != 1 {
		t.Fatalf("empty documents must be dropped before build, got %d", len(index.gotDocs))
	}
	if observer.docs != 1 {
		t.Fatalf("expected build observation for 1 document, got %d", observer.docs)
	}
}

func TestInitializerFailsOnFetchError(t *testing.T) {
	index := &buildIndexFake{}
	in := NewInitializer(&sourceFake{err: errors.New("wiki unreachable")}, extractorFake{}, index, nil)

	in.Run(context.Background())

	st := in.State()
	if st.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %+v", st)
	}
	if st.Err == "" {
		t.Fatalf("failed state must carry the error message")
	}
	if index.buildRan {
		t.Fatalf("index build must not run after fetch failure")
	}
}

func TestInitializerFailsOnEmptyCorpus(t *testing.T) {
	in := NewInitializer(&sourceFake{pages: []domain.RawPage{{ID: "1", Body: ""}}}, extractorFake{}, &buildIndexFake{}, nil)

	in.Run(context.Background())

	if st := in.State(); st.Status != domain.StatusFailed {
		t.Fatalf("expected failed on empty corpus, got %+v", st)
	}
}

func TestInitializerFailsOnBuildError(t *testing.T) {
	in := NewInitializer(
		&sourceFake{pages: []domain.RawPage{{ID: "1", Body: "text"}}},
		extractorFake{},
		&buildIndexFake{err: errors.New("embedding provider down")},
		nil,
	)

	in.Run(context.Background())

	if st := in.State(); st.Status != domain.StatusFailed {
		t.Fatalf("expected failed on build error, got %+v", st)
	}
}
