package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Kind classifies every error the client returns.
type Kind int

// Error kinds.
const (
	KindNetwork Kind = iota + 1
	KindHTTP
	KindAuthRequired
	KindNotFound
	KindForbidden
	KindAlreadyHearted
	KindNotAvailable
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindAuthRequired:
		return "auth required"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindAlreadyHearted:
		return "already hearted"
	case KindNotAvailable:
		return "not available"
	case KindInvalid:
		return "invalid"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Reason strings the backend puts in 400 bodies.
const (
	ReasonAlreadyHearted = "Listing already hearted"
	ReasonNotAvailable   = "Listing is not available"
)

// Error is the single error type returned by Client operations.
type Error struct {
	Kind   Kind
	Op     string
	Status int    // HTTP status, 0 when no response was received
	Reason string // "error" or "message" field of the response body
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrHTTP           = &Error{Kind: KindHTTP}
	ErrAuthRequired   = &Error{Kind: KindAuthRequired}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrAlreadyHearted = &Error{Kind: KindAlreadyHearted}
	ErrNotAvailable   = &Error{Kind: KindNotAvailable}
	ErrInvalid        = &Error{Kind: KindInvalid}
)

// ErrRequestInFlight is returned when a purchase request for the same
// listing has not completed yet.
var ErrRequestInFlight = errors.New("purchase request already in flight")

// KindOf returns the kind of err, or 0 when err is not a client error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// classify maps a non-2xx response to an *Error. It consumes the body.
func classify(op string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{
		Kind:   KindHTTP,
		Op:     op,
		Status: resp.StatusCode,
		Reason: reasonOf(body),
		Body:   body,
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusForbidden:
		e.Kind = KindForbidden
	case http.StatusBadRequest:
		switch e.Reason {
		case ReasonAlreadyHearted:
			e.Kind = KindAlreadyHearted
		case ReasonNotAvailable:
			e.Kind = KindNotAvailable
		}
	}
	return e
}

func reasonOf(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func invalid(op, reason string) *Error {
	return &Error{Kind: KindInvalid, Op: op, Reason: reason}
}

func authRequired(op string) *Error {
	return &Error{Kind: KindAuthRequired, Op: op, Reason: "please log in"}
}
