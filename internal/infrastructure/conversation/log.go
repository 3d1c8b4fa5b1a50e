package conversation

import (
	"sync"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

const DefaultMaxTurns = 10

// Log is the process-local bounded conversation history. It keeps at most
// maxTurns turns, evicting from the oldest end, and serializes all mutation
// so an interleaved pair of requests cannot break the alternating-role
// invariant.
type Log struct {
	mu       sync.Mutex
	maxTurns int
	turns    []domain.Turn
}

func NewLog(maxTurns int) *Log {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Log{
		maxTurns: maxTurns,
		turns:    make([]domain.Turn, 0, maxTurns),
	}
}

func (l *Log) Append(turn domain.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(turn)
}

// AppendExchange records a completed question/answer pair under a single
// lock acquisition, so both turns land adjacently.
func (l *Log) AppendExchange(question, answer string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(domain.Turn{Role: domain.RoleUser, Content: question})
	l.appendLocked(domain.Turn{Role: domain.RoleAssistant, Content: answer})
}

func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = l.turns[:0]
}

// Snapshot returns a copy of the current turns in chronological order.
func (l *Log) Snapshot() []domain.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) appendLocked(turn domain.Turn) {
	l.turns = append(l.turns, turn)
	if overflow := len(l.turns) - l.maxTurns; overflow > 0 {
		l.turns = append(l.turns[:0], l.turns[overflow:]...)
	}
}
