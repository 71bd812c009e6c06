package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the error taxonomy the UI distinguishes: each kind maps to one
// user-facing message, nothing is re-thrown or escalated past the handler
// that issued the request.
type Kind int

const (
	KindBadInput Kind = iota
	KindAuth
	KindNotFound
	KindRateLimited
	KindServer
	KindUnreachable
)

// errServerClass is the breaker-internal marker for 5xx responses.
var errServerClass = errors.New("server error class")

type APIError struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

func errorFromStatus(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}

	kind := KindBadInput
	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 404:
		kind = KindNotFound
	case status == 429:
		kind = KindRateLimited
	case status >= 500:
		kind = KindServer
	}
	return &APIError{Kind: kind, Status: status, Message: msg}
}

func unreachable(cause error) *APIError {
	return &APIError{Kind: KindUnreachable, Message: "backend unreachable", cause: cause}
}

func isKind(err error, k Kind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == k
}

func IsAuth(err error) bool        { return isKind(err, KindAuth) }
func IsNotFound(err error) bool    { return isKind(err, KindNotFound) }
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }
func IsUnreachable(err error) bool { return isKind(err, KindUnreachable) }

// UserMessage converts any error from this package into the notification
// text shown to the user.
func UserMessage(err error) string {
	var ae *APIError
	if !errors.As(err, &ae) {
		return "Something went wrong. Please try again."
	}
	switch ae.Kind {
	case KindAuth:
		return "Please log in again to continue."
	case KindNotFound:
		return "This item is no longer available."
	case KindRateLimited:
		return "Too many requests. Please try again shortly."
	case KindUnreachable:
		return "Could not reach the store. Please check your connection."
	case KindServer:
		return "Something went wrong. Please try again."
	default:
		if ae.Message != "" {
			return ae.Message
		}
		return "Something went wrong. Please try again."
	}
}
