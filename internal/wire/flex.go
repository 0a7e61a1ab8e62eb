package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flexTime accepts null, "", RFC 3339, a bare date, or epoch milliseconds.
type flexTime struct {
	t     time.Time
	valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	*f = flexTime{}
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid time %s", b)
		}
		f.t, f.valid = time.UnixMilli(ms).UTC(), true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.t, f.valid = t, true
			return nil
		}
	}
	return fmt.Errorf("invalid time %q", s)
}

func (f flexTime) ptr() *time.Time {
	if !f.valid {
		return nil
	}
	t := f.t
	return &t
}

func (f flexTime) value() time.Time {
	return f.t
}

// flexString accepts a JSON string or number, keeping the textual form.
// Some backends send priorities as 0-4.
type flexString struct {
	s      string
	number bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString{}
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &f.s)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	f.s, f.number = n.String(), true
	return nil
}

// flexFloat accepts a JSON number or numeric string.
type flexFloat struct {
	v     float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	f.v, f.valid = v, true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.v
	return &v
}
