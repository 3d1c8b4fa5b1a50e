package markup

import (
	"regexp"
	"strings"

	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
)

var _ ports.PageExtractor = (*Extractor)(nil)

var (
	// Tags are replaced with a space so words do not concatenate across
	// tag boundaries.
	allTags    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)

	// Fixed entity set; anything else passes through unchanged.
	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
)

// Extractor converts raw wiki storage markup into plain text. Malformed
// markup degrades to best-effort text; Extract never fails.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(page domain.RawPage) domain.Document {
	return domain.Document{
		ID:      page.ID,
		Title:   page.Title,
		URL:     page.URL,
		Version: page.Version,
		Text:    Normalize(page.Body),
	}
}

// Normalize strips tags, decodes the supported entities, collapses
// whitespace runs to a single space, and trims the result.
func Normalize(body string) string {
	text := allTags.ReplaceAllString(body, " ")
	text = entities.Replace(text)
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
