package cli

import (
	"errors"
	"fmt"
	"strings"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

var (
	errEmptyRange   = errors.New("range is empty")
	errSeedNeedsOrg = errors.New("--seed needs an organization (--seed-org, --org or orgId in config.yaml)")
)

type badFlagError struct {
	flag  string
	value string
	err   error
}

func (e badFlagError) Error() string {
	return fmt.Sprintf("--%s %q: %v", e.flag, e.value, e.err)
}

func (e badFlagError) Unwrap() error { return e.err }

// parseList splits comma separated flag values and parses each one.
func parseList[T any](flag string, values []string, parse func(string) (T, error)) ([]T, error) {
	var out []T
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := parse(part)
			if err != nil {
				return nil, badFlagError{flag: flag, value: part, err: err}
			}
			out = append(out, v)
		}
	}
	return out, nil
}
