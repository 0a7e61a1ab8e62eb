package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error is a request the backend answered but rejected, either with a non-2xx
// status or with ok:false inside a 2xx body.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Status == 0 {
		return "api: " + msg
	}
	return fmt.Sprintf("api: %d %s", e.Status, msg)
}

// TransportError is a request that never produced a usable response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// IsCanceled reports whether err comes from a superseded or abandoned request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
