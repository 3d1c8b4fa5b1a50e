package ollama

import (
	"fmt"
	"strings"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

func buildAnswerPrompt(question string, history []domain.Exchange, docs []domain.ScoredDocument) string {
	var b strings.Builder

	b.WriteString(`You are a documentation assistant. Answer the user question using only the context below.
If the context is insufficient, say so directly.

`)

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, exchange := range history {
			b.WriteString("User: ")
			b.WriteString(exchange.Question)
			b.WriteString("\nAssistant: ")
			b.WriteString(exchange.Answer)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	for idx, doc := range docs {
		fmt.Fprintf(&b, "[%d] title=%s url=%s score=%.3f\n%s\n\n",
			idx+1,
			doc.Document.Title,
			doc.Document.URL,
			doc.Score,
			doc.Document.Text,
		)
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n")

	return b.String()
}
