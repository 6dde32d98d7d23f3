package tmdf

import (
	"errors"
	"fmt"
)

// Adapter level failure classification. Breaker open and timeout conditions
// degrade to component specific fallback values at the adapter boundary,
// malformed payloads always surface
var (
	ErrAdapterUnavailable = errors.New("adapter circuit breaker is open")
	ErrAdapterTimeout     = errors.New("adapter call timed out")

	// ErrNoSolution is a legitimate outcome, never a failure for circuit
	// breaker accounting
	ErrNoSolution = errors.New("no solution")
)

type MalformedResponseError struct {
	Adapter string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Adapter, e.Reason)
}

type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// IsAdapterFailure reports whether the error counts as a failure for circuit
// breaker accounting. A well formed no result reply does not
func IsAdapterFailure(err error) bool {
	if err == nil || errors.Is(err, ErrNoSolution) {
		return false
	}

	return true
}

// ResponseError is the structured error attached to a ResponseSet. The
// orchestration tier never returns an empty journey list without one
type ResponseError struct {
	ID      string `groups:"basic"`
	Message string `groups:"basic"`
}

const (
	ResponseErrorNoSolution       = "no_solution"
	ResponseErrorAllFiltered      = "no_solution"
	ResponseErrorInvalidRequest   = "invalid_request"
	ResponseErrorTechnicalFailure = "technical_failure"
)

func NewFilteredToEmptyError() *ResponseError {
	return &ResponseError{
		ID:      ResponseErrorAllFiltered,
		Message: "no solution found for this journey, all were filtered",
	}
}

func NewNoSolutionError() *ResponseError {
	return &ResponseError{
		ID:      ResponseErrorNoSolution,
		Message: "no solution found for this journey",
	}
}

func NewInvalidRequestError(reason string) *ResponseError {
	return &ResponseError{
		ID:      ResponseErrorInvalidRequest,
		Message: reason,
	}
}

func NewTechnicalFailureError(reason string) *ResponseError {
	return &ResponseError{
		ID:      ResponseErrorTechnicalFailure,
		Message: reason,
	}
}
