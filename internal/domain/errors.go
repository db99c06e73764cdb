package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when no entry exists for a key.
// Callers must treat it as a distinct case, not a failure: a stale or
// foreign call SID can legitimately have no context.
var ErrNotFound = errors.New("not found")

// ConfigError signals missing provider credentials. It is raised before
// any external call is attempted and is never retried.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// NewConfigError builds a ConfigError for the named settings.
func NewConfigError(missing ...string) *ConfigError {
	return &ConfigError{Missing: missing}
}

// ProviderError signals that an external service rejected a request. The
// raw provider response is retained for diagnosis.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsProviderError reports whether err is a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
