// Package provider defines the capability interface the conversation engine
// uses to talk to a hosted model, plus the error taxonomy shared by all
// backends.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/attractorlabs/colloquy/pkg/chat"
)

// Request is one model call: a system instruction plus the ordered message
// history to complete.
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []chat.Message
	MaxTokens    int64
}

// Provider generates a completion for a request. Implementations must be safe
// for concurrent use; each call is independent.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrorKind classifies a failed model call.
type ErrorKind string

const (
	ErrorKindRateLimited    ErrorKind = "rate_limited"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	ErrorKindServerError    ErrorKind = "server_error"
)

// Retriable reports whether calls failing with this kind are worth retrying.
func (k ErrorKind) Retriable() bool {
	switch k {
	case ErrorKindRateLimited, ErrorKindTimeout, ErrorKindServerError:
		return true
	default:
		return false
	}
}

// Error is a classified failure from a model backend.
type Error struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("model call failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("model call failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retriable reports whether err is a model call error worth retrying.
// Unclassified errors are treated as not retriable.
func Retriable(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind.Retriable()
	}
	return false
}

// ClassifyStatus maps an HTTP status code from a model API to an ErrorKind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return ErrorKindRateLimited
	case status == 408 || status == 504:
		return ErrorKindTimeout
	case status >= 500:
		return ErrorKindServerError
	default:
		return ErrorKindInvalidRequest
	}
}
