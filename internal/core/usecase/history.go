package usecase

import "github.com/kpetrov/docsqa/internal/core/domain"

// PairExchanges walks the turn log in order and pairs each user turn with
// the immediately following assistant turn. Turns without a counterpart are
// excluded, so the generator only ever sees completed exchanges.
func PairExchanges(turns []domain.Turn) []domain.Exchange {
	out := make([]domain.Exchange, 0, len(turns)/2)
	for i := 0; i < len(turns); i++ {
		if turns[i].Role != domain.RoleUser {
			continue
		}
		if i+1 >= len(turns) || turns[i+1].Role != domain.RoleAssistant {
			continue
		}
		out = append(out, domain.Exchange{
			Question: turns[i].Content,
			Answer:   turns[i+1].Content,
		})
		i++
	}
	return out
}
