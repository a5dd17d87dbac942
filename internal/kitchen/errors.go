package kitchen

import "errors"

// Kind classifies a domain failure so the request boundary can map it to a
// status code without inspecting detail text.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindConflict means a relation row already exists.
	KindConflict
	// KindInvalidOperation covers removes of absent relations, self
	// subscription and out-of-bound numeric fields.
	KindInvalidOperation
	// KindValidationFailure covers malformed input shapes.
	KindValidationFailure
)

// Error is a domain failure with a human-readable detail message. All of
// these are user-input errors surfaced synchronously; none are retried.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Detail: detail}
}

func InvalidOperation(detail string) *Error {
	return &Error{Kind: KindInvalidOperation, Detail: detail}
}

func ValidationFailure(detail string) *Error {
	return &Error{Kind: KindValidationFailure, Detail: detail}
}

// KindOf extracts the Kind from an error chain, or 0 when the error did not
// originate in this package.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}
