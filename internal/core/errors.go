package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input (unknown protocol/phase, bad status)
	ErrCatState      ErrorCategory = "state"      // State corruption/conflict
	ErrCatGate       ErrorCategory = "gate"       // Blocked by workflow policy
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the engine.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatState,
		Code:     code,
		Message:  message,
	}
}

// ErrGate creates a gate error. Gate errors are normal control-flow
// outcomes, not failures; callers translate them to a Block decision.
func ErrGate(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatGate,
		Code:     code,
		Message:  message,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// asDomainError is a typed errors.As helper.
func asDomainError(err error, target **DomainError) bool {
	return errors.As(err, target)
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeProtocolNotFound    = "PROTOCOL_NOT_FOUND"
	CodePhaseUnknown        = "PHASE_UNKNOWN"
	CodeNoActiveWorkflow    = "NO_ACTIVE_WORKFLOW"
	CodeWorkflowTerminal    = "WORKFLOW_TERMINAL"
	CodeRequirementsMissing = "PHASE_REQUIREMENTS_MISSING"
	CodeValidationGate      = "VALIDATION_GATE"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeInvalidProtocol     = "INVALID_PROTOCOL"
	CodeStateCorrupted      = "STATE_CORRUPTED"
)
