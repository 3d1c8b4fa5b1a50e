package domain

// ScoredDocument is a retrieval hit with its similarity to the query.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Source is a citation attached to a generated answer.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

// Answer is the result of one grounded question/answer round trip.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type InitStatus string

const (
	StatusInitializing InitStatus = "initializing"
	StatusReady        InitStatus = "ready"
	StatusFailed       InitStatus = "failed"
)

// Readiness is the lifecycle state exposed to the HTTP layer. Ready and
// Failed are terminal; Failed is only left by a process restart.
type Readiness struct {
	Status InitStatus `json:"status"`
	Err    string     `json:"error,omitempty"`
}
