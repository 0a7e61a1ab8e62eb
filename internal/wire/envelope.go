// Package wire translates backend JSON into model types. It is the only place
// that knows how backend rows spell enums, dates and envelopes.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mops-cli/internal/model"
)

// RemoteError is an error reported by the backend inside the response body.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "request failed"
	}
	return msg
}

// ErrEmptyBody is returned when a response that must carry data has none.
var ErrEmptyBody = errors.New("empty response body")

type envelope struct {
	OK         *bool             `json:"ok"`
	Data       json.RawMessage   `json:"data"`
	Error      json.RawMessage   `json:"error"`
	Pagination *model.Pagination `json:"pagination"`
	Meta       *model.Pagination `json:"meta"`
}

// Unwrap accepts either a bare JSON value or an {ok, data, error} envelope and
// returns the payload. ok:false (or an error member without data) becomes a
// *RemoteError; the payload is never returned alongside an error.
func Unwrap(body []byte) (json.RawMessage, *model.Pagination, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil, ErrEmptyBody
	}
	if body[0] != '{' {
		return json.RawMessage(body), nil, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	_, hasOK := keys["ok"]
	_, hasData := keys["data"]
	_, hasErr := keys["error"]
	if !hasOK && !hasData && !hasErr {
		return json.RawMessage(body), nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("decode envelope: %w", err)
	}
	failed := env.OK != nil && !*env.OK
	if env.OK == nil && hasErr && !isNull(env.Error) && !hasData {
		failed = true
	}
	if failed {
		return nil, nil, &RemoteError{Message: errorMessage(env.Error)}
	}
	meta := env.Pagination
	if meta == nil {
		meta = env.Meta
	}
	if !hasData {
		return nil, meta, nil
	}
	return env.Data, meta, nil
}

// ErrorMessage extracts a human message from an error body, whichever shape it has.
func ErrorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return strings.TrimSpace(string(body))
	}
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	if msg := errorMessage(env.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(env.Message)
}

// errorMessage reads {"message": "..."} or a plain string.
func errorMessage(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func isNull(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}

// listPayload splits a list payload that is either a bare array or an object
// carrying the array under items/data plus optional pagination.
func listPayload(raw json.RawMessage, keys ...string) (json.RawMessage, *model.Pagination, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return json.RawMessage("[]"), nil, nil
	}
	if raw[0] == '[' {
		return raw, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("decode list: %w", err)
	}
	var meta *model.Pagination
	for _, k := range []string{"pagination", "meta"} {
		if v, ok := obj[k]; ok && !isNull(v) {
			var p model.Pagination
			if err := json.Unmarshal(v, &p); err != nil {
				return nil, nil, fmt.Errorf("decode pagination: %w", err)
			}
			meta = &p
			break
		}
	}
	for _, k := range append(keys, "items", "data") {
		if v, ok := obj[k]; ok {
			return v, meta, nil
		}
	}
	return nil, nil, fmt.Errorf("decode list: no array under %v", append(keys, "items", "data"))
}
