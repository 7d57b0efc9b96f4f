package claim

// PreconditionError is a transition refused before any request was made.
// It unwraps to one of model.ErrNotAuthenticated, model.ErrUnauthorized or
// model.ErrInvalidState.
type PreconditionError struct {
	Kind    error
	Message string
}

// ErrorFor builds a PreconditionError.
func ErrorFor(kind error, msg string) *PreconditionError {
	return &PreconditionError{Kind: kind, Message: msg}
}

func (e *PreconditionError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *PreconditionError) Unwrap() error {
	return e.Kind
}
