package monitor

import "errors"

// Outcome classifies a fetch from the monitoring service
type Outcome int

const (
	// Success means the response was received and is usable
	Success Outcome = iota
	// SoftFailure means a response arrived but cannot be used: a
	// success=false envelope, a non-2xx status or an unusable body
	SoftFailure
	// HardFailure means no usable response arrived at all
	HardFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case SoftFailure:
		return "soft-failure"
	case HardFailure:
		return "hard-failure"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome by name in JSON and msgpack responses
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var (
	// ErrNotReady is returned when the service answers with success=false
	ErrNotReady = errors.New("service reported success=false")
	// ErrUnusableResponse is returned when a response is missing required fields
	ErrUnusableResponse = errors.New("unusable response from service")
)

// Result carries a fetched value together with its outcome
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether the fetch succeeded
func (r Result[T]) OK() bool {
	return r.Outcome == Success
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: Success}
}

func failed[T any](o Outcome, err error) Result[T] {
	return Result[T]{Outcome: o, Err: err}
}
