package conversation

import (
	"fmt"
	"testing"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

func TestLogEnforcesMaxTurns(t *testing.T) {
	log := NewLog(10)

	for i := 0; i < 11; i++ {
		log.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := log.Snapshot()
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}
	if turns[0].Content != "q6" {
		t.Fatalf("expected oldest surviving turn q6, got %q", turns[0].Content)
	}
	if turns[9].Content != "a10" {
		t.Fatalf("expected newest turn a10, got %q", turns[9].Content)
	}
}

func TestLogEvictsOldestFirst(t *testing.T) {
	log := NewLog(4)
	for i := 0; i < 3; i++ {
		log.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := log.Snapshot()
	want := []string{"q1", "a1", "q2", "a2"}
	for i, content := range want {
		if turns[i].Content != content {
			t.Fatalf("turn %d: expected %q, got %q", i, content, turns[i].Content)
		}
	}
}

func TestLogRolesAlternateThroughEviction(t *testing.T) {
	log := NewLog(10)
	for i := 0; i < 8; i++ {
		log.AppendExchange("q", "a")
	}

	for i, turn := range log.Snapshot() {
		wantRole := domain.RoleUser
		if i%2 == 1 {
			wantRole = domain.RoleAssistant
		}
		if turn.Role != wantRole {
			t.Fatalf("turn %d: expected role %s, got %s", i, wantRole, turn.Role)
		}
	}
}

func TestLogResetIsIdempotent(t *testing.T) {
	log := NewLog(10)
	log.AppendExchange("q", "a")

	log.Reset()
	log.Reset()

	if turns := log.Snapshot(); len(turns) != 0 {
		t.Fatalf("expected empty log after reset, got %d turns", len(turns))
	}
}

func TestLogSnapshotIsACopy(t *testing.T) {
	log := NewLog(10)
	log.AppendExchange("q", "a")

	snap := log.Snapshot()
	snap[0].Content = "mutated"

	if log.Snapshot()[0].Content != "q" {
		t.Fatalf("snapshot mutation leaked into the log")
	}
}

func TestLogDefaultCapacity(t *testing.T) {
	log := NewLog(0)
	for i := 0; i < 20; i++ {
		log.Append(domain.Turn{Role: domain.RoleUser, Content: "x"})
	}
	if got := len(log.Snapshot()); got != DefaultMaxTurns {
		t.Fatalf("expected default capacity %d, got %d", DefaultMaxTurns, got)
	}
}
