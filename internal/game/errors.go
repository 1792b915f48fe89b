// internal/game/errors.go
//
// Closed error taxonomy for session operations. Every failure a caller can
// observe carries one of four kinds; transport layers map kinds to wire
// errors without parsing message strings.

package game

import (
	"errors"
	"fmt"
)

// Kind classifies a session error.
type Kind string

const (
	// KindNotFound: unknown session or player reference.
	KindNotFound Kind = "not-found"
	// KindForbidden: the caller lacks the required role (leader, drawer).
	KindForbidden Kind = "forbidden"
	// KindInvalidInput: malformed or out-of-phase request payload.
	KindInvalidInput Kind = "invalid-input"
	// KindInternal: invariant violation; the session should be treated as
	// corrupted rather than guessed at.
	KindInternal Kind = "internal"
)

// Error is the single error type returned by session operations.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.msg }

// NotFoundf, Forbiddenf, InvalidInputf and Internalf construct kinded errors.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, msg: fmt.Sprintf(format, args...)}
}

func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
