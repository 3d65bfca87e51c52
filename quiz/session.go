package quiz

// State tags the two conversation states. Carrying an explicit tag keeps the
// transition switch in the engine exhaustive instead of inferring state from
// whether CurrentQuestionID happens to be empty.
type State int

const (
	// StateNoQuestion is the initial state, re-entered after every
	// resolved question.
	StateNoQuestion State = iota
	// StateAwaitingAnswer means a question is open and the next free-text
	// message is an answer attempt.
	StateAwaitingAnswer
)

// Session is the per-user mutable game state. TriesUsed is meaningful only
// while a question is open.
type Session struct {
	UserID            string
	CurrentQuestionID string
	TriesUsed         int
	Score             int
}

// NewSession returns the session created on a start event.
func NewSession(userID string) Session {
	return Session{UserID: userID, TriesUsed: 1}
}

// State returns the explicit tag for the session's conversation state.
func (s Session) State() State {
	if s.CurrentQuestionID == "" {
		return StateNoQuestion
	}
	return StateAwaitingAnswer
}
