package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Kind discriminates the failure classes the facade can surface.
type Kind string

const (
	// KindTimeout covers requests that exceeded their deadline.
	KindTimeout Kind = "timeout"
	// KindNetwork covers transport failures before any response arrived.
	KindNetwork Kind = "network"
	// KindServer covers non-2xx responses; never retried.
	KindServer Kind = "server"
)

// Error is the uniform error shape returned by every facade operation.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the error belongs to the transport class
// the generate call is allowed to retry on.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindNetwork
}

// AsError unwraps err into the facade error shape.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classifyTransport maps a low-level transport failure to an Error.
func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// serverError extracts a message from a structured error body when present.
func serverError(statusCode int, body []byte) *Error {
	payload := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}{}
	message := ""
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			message = payload.Error
		case payload.Message != "":
			message = payload.Message
		case payload.Detail != "":
			message = payload.Detail
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	return &Error{Kind: KindServer, StatusCode: statusCode, Message: message}
}
