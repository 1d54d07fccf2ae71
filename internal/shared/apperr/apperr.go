// Package apperr defines the error kinds that services return and the HTTP layer maps to
// status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the transport.
type Kind uint8

const (
	// KindInternal covers store failures and anything unclassified.
	KindInternal Kind = iota
	// KindInvalidInput is returned for malformed or missing fields, bad file types,
	// empty uploads and unusable coordinates.
	KindInvalidInput
	// KindUnauthorized is returned when credentials or tokens do not verify.
	KindUnauthorized
	// KindNotFound is returned when a user, game or session does not exist.
	KindNotFound
	// KindConflict is returned when a unique constraint rejects an insert.
	KindConflict
	// KindUpload is returned when the object store rejects an upload.
	KindUpload
	// KindInsert is returned when the record store rejects an insert.
	KindInsert
)

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindInvalidInput: "invalid_input",
	KindUnauthorized: "unauthorized",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
	KindUpload:       "upload",
	KindInsert:       "insert",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is a classified error. Message is safe to show to API clients;
// Err carries the underlying cause and is only exposed in debug mode.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a client-facing message.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the client-facing message of err, or fallback when err
// is not classified.
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
