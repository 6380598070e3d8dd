package datastore

// codedError is a sentinel error carrying a stable machine code for logs.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the machine-readable error code.
func (e *codedError) Code() string { return e.code }

var (
	// ErrIndexUnavailable reports that the category index document could not
	// be loaded. The store degrades to an empty category set.
	ErrIndexUnavailable = &codedError{code: "index_unavailable", msg: "category index unavailable"}

	// ErrNotFound reports that a category is absent from the index or that
	// its data file could not be parsed.
	ErrNotFound = &codedError{code: "not_found", msg: "category not found"}
)
