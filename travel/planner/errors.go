package planner

// codedError is a sentinel error carrying a stable machine code for logs.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the machine-readable error code.
func (e *codedError) Code() string { return e.code }

var (
	// ErrInvalidChoice rejects input outside the current stage's enumeration.
	// The stage does not advance and the draft plan is not mutated.
	ErrInvalidChoice = &codedError{code: "invalid_choice", msg: "choice not valid for this step"}

	// ErrSessionBusy rejects an update that arrives while another step for
	// the same user is still executing. Updates are not queued.
	ErrSessionBusy = &codedError{code: "session_busy", msg: "previous step still in progress"}

	// ErrNoSession reports that the user has no active planning session,
	// typically after idle expiry or a stale button press.
	ErrNoSession = &codedError{code: "no_session", msg: "no active planning session"}
)
