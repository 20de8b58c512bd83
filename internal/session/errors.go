// Package session owns the credential-and-session lifecycle: minting,
// rotating and revoking the access/refresh token pair tied to a user.
// It is a stateless service over a UserStore and a TokenCodec; session
// truth lives entirely in the single refresh-token slot on the persisted
// user record.
package session

import "errors"

// Kind classifies a rejection so the HTTP layer can map it to a status
// code without inspecting message strings.
type Kind int

const (
	// KindBadRequest means the caller omitted required input.
	KindBadRequest Kind = iota + 1
	// KindUnauthenticated means a credential mismatch or a missing,
	// invalid, expired or superseded token.
	KindUnauthenticated
	// KindConflict means a unique identity already exists.
	KindConflict
	// KindNotFound means the referenced user or channel does not exist.
	KindNotFound
	// KindInternal means a collaborator failed; not attributable to the
	// caller.
	KindInternal
)

// Error is a classified rejection raised at the point of detection and
// propagated unchanged to the HTTP boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, if any
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error with a caller-facing message.
func E(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain.  Unclassified errors are
// treated as internal faults.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
