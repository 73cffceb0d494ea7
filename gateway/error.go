package gateway

import "errors"

// Kind classifies a gateway failure.
type Kind int

const (
	// NetworkFailure means the source was unreachable, timed out or
	// answered with a non-2xx status.
	NetworkFailure Kind = iota + 1
	// UpstreamError means the source answered but reported a logical
	// error such as bad credentials or an exhausted quota.
	UpstreamError
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case UpstreamError:
		return "upstream"
	}
	return "none"
}

// Error is a classified gateway failure. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 when err is not a gateway error.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
