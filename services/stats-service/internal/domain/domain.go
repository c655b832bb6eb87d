package domain

import (
	"errors"
	"time"
)

// Hit is one recorded request to a tracked endpoint.
type Hit struct {
	ID        int64
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewStats is the hit count for one (app, uri) pair.
type ViewStats struct {
	App  string
	URI  string
	Hits int64
}

// StatsQuery selects hits with Start <= created <= End. Empty URIs means all.
type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

var ErrValidation = errors.New("validation error")

// ValidationError carries per-field messages for the 400 body.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(msg string, fields map[string]string) error {
	return &ValidationError{Message: msg, Fields: fields}
}
