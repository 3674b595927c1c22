package errors

import "fmt"

// ParseError wraps a roster file error with the line it occurred on.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("roster error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RefusalMessage is shown to a customer when no lane can take the chat.
const RefusalMessage = "Chat is refused. Please try again later."

// Routing outcomes surfaced to callers.
var (
	ErrChatRefused     = fmt.Errorf("%s", RefusalMessage)
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrEmptyCustomer   = fmt.Errorf("customer name is required")
)

// Roster file errors.
var (
	ErrInvalidFieldCount = fmt.Errorf("invalid field count")
	ErrInvalidShift      = fmt.Errorf("invalid shift")
	ErrInvalidSeniority  = fmt.Errorf("invalid seniority")
	ErrEmptyAgentName    = fmt.Errorf("empty agent name")
	ErrEmptyTeamName     = fmt.Errorf("empty team name")
	ErrDuplicateAgent    = fmt.Errorf("duplicate agent")
	ErrTeamShiftMismatch = fmt.Errorf("team already declared with another shift")
)
