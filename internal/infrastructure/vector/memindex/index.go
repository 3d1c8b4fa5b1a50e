package memindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
)

const defaultTopK = 4

var _ ports.VectorIndex = (*Index)(nil)

// ErrAlreadyBuilt is returned by Build after the first successful build; the
// index never rebuilds within a process lifetime.
var ErrAlreadyBuilt = errors.New("vector index already built")

type entry struct {
	doc domain.Document
	vec []float32
}

// Index is a brute-force in-memory similarity index. Vectors are
// L2-normalized at insert and query time, so the dot product equals cosine
// similarity. After Build succeeds the entries are read-only and queries
// need no locking.
type Index struct {
	embedder ports.Embedder

	mu      sync.Mutex
	built   bool
	dim     int
	entries []entry
}

func New(embedder ports.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds every document and populates the index. Documents whose
// embedding fails are skipped and logged; Build fails only when the input
// set is empty or no document could be embedded.
func (idx *Index) Build(ctx context.Context, docs []domain.Document) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.built {
		return ErrAlreadyBuilt
	}
	if len(docs) == 0 {
		return domain.WrapError(domain.ErrEmptyCorpus, "build index", errors.New("no documents to index"))
	}

	vectors := idx.embedAll(ctx, docs)

	entries := make([]entry, 0, len(docs))
	for i, doc := range docs {
		vec := vectors[i]
		if len(vec) == 0 {
			continue
		}
		if idx.dim == 0 {
			idx.dim = len(vec)
		}
		if len(vec) != idx.dim {
			slog.Warn("index_skip_document", "document_id", doc.ID, "reason", "dimension mismatch", "got", len(vec), "want", idx.dim)
			continue
		}
		entries = append(entries, entry{doc: doc, vec: l2Normalize(vec)})
	}
	if len(entries) == 0 {
		return fmt.Errorf("build index: embedding failed for all %d documents", len(docs))
	}

	idx.entries = entries
	idx.built = true
	slog.Info("index_built", "documents", len(docs), "indexed", len(entries))
	return nil
}

// embedAll tries one batch call first and falls back to per-document
// embedding so a single bad document does not abort the whole build.
// The result is index-aligned with docs; failed slots are nil.
func (idx *Index) embedAll(ctx context.Context, docs []domain.Document) [][]float32 {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	vectors, err := idx.embedder.Embed(ctx, texts)
	if err == nil && len(vectors) == len(docs) {
		return vectors
	}
	if err != nil {
		slog.Warn("index_batch_embed_failed", "documents", len(docs), "error", err)
	}

	vectors = make([][]float32, len(docs))
	for i, doc := range docs {
		vec, err := idx.embedder.EmbedQuery(ctx, doc.Text)
		if err != nil {
			slog.Warn("index_skip_document", "document_id", doc.ID, "error", err)
			continue
		}
		vectors[i] = vec
	}
	return vectors
}

// Query embeds text and returns up to k documents in non-increasing
// similarity order.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error) {
	if !idx.ready() {
		return nil, domain.WrapError(domain.ErrNotReady, "query index", errors.New("index not built"))
	}
	if k <= 0 {
		k = defaultTopK
	}

	vec, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := l2Normalize(vec)

	scored := make([]domain.ScoredDocument, 0, len(idx.entries))
	for _, e := range idx.entries {
		scored = append(scored, domain.ScoredDocument{
			Document: e.doc,
			Score:    dot(e.vec, query),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries)
}

func (idx *Index) ready() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.built
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
