package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation log.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Exchange is a completed question/answer pair used as generation history.
// Dangling turns without a counterpart never become an Exchange.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
