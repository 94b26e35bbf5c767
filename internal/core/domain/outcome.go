package domain

// OutcomeKind tells success and failure apart.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
)

// Outcome is what a session action reports back to its caller. The caller
// decides how to surface Message; Redirect is empty when the browser should
// stay where it is.
type Outcome struct {
	Kind     OutcomeKind
	Message  string
	Redirect string
	// Err is the underlying failure. Only set when Kind is OutcomeFailure.
	Err error
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Succeeded builds a success outcome.
func Succeeded(message, redirect string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Message: message, Redirect: redirect}
}

// Failed builds a failure outcome that keeps the browser in place.
func Failed(message string, err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: message, Err: err}
}
