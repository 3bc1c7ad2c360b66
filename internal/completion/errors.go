package completion

import (
	"errors"
	"fmt"
)

// Kind classifies why a completion call failed.
type Kind string

const (
	// KindTransport: the request could not be sent or the response not read.
	KindTransport Kind = "transport"
	// KindProtocol: the body is not JSON or lacks choices[0].message.content.
	KindProtocol Kind = "protocol"
	// KindUpstream: the API answered with an error payload instead of choices.
	KindUpstream Kind = "upstream"
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrTransport = errors.New("completion transport error")
	ErrProtocol  = errors.New("completion protocol error")
	ErrUpstream  = errors.New("completion upstream error")
)

// Error is the tagged failure returned by Client.Complete.
type Error struct {
	Kind   Kind
	Status int    // HTTP status when a response was received, else 0
	Detail string // human-readable description or upstream payload
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	return false
}

// KindOf returns the Kind of err, or "" when err is not a completion error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
