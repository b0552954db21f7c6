package config

// UserError is a configuration problem phrased for the operator. The CLI
// shows Message and Suggestion; Underlying appears only with --verbose.
type UserError struct {
	Message    string
	Context    string
	Suggestion string
	Underlying error
}

// Error returns the user-facing message.
func (e *UserError) Error() string {
	if e.Context != "" {
		return e.Message + " (at " + e.Context + ")"
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}
