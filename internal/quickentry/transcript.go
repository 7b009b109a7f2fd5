package quickentry

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one line of the chat transcript.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the append-only chat log for one session. It lives only in
// memory and is discarded with the session.
type Transcript struct {
	turns []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a single turn to the end of the transcript.
func (t *Transcript) Append(role Role, text string) {
	t.turns = append(t.turns, Turn{Role: role, Text: text})
}

// AppendAll adds turns in order, preserving their roles.
func (t *Transcript) AppendAll(turns []Turn) {
	t.turns = append(t.turns, turns...)
}

// All returns the turns in append order. The slice is a copy; mutating it
// does not affect the transcript.
func (t *Transcript) All() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int {
	return len(t.turns)
}
