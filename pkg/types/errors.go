package types

import "fmt"

// ErrorType represents different categories of scheduling errors
type ErrorType string

const (
	// ErrorTypeModel means the input is structurally unsatisfiable before
	// search even starts (e.g. too few doctors for the required headcount).
	ErrorTypeModel ErrorType = "model"
	// ErrorTypeValidation means the validator found a hard-constraint
	// violation in a schedule the search claimed feasible. This indicates a
	// search-engine defect and is always fatal.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeBudget means the search budget was exhausted with no
	// feasible schedule found.
	ErrorTypeBudget ErrorType = "budget"
	// ErrorTypeConfig means the supplied configuration is invalid.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal covers unexpected engine failures.
	ErrorTypeInternal ErrorType = "internal"
)

// RosterError represents a structured error in the scheduling engine
type RosterError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *RosterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *RosterError) Unwrap() error {
	return e.Cause
}

// NewModelError creates a new model error
func NewModelError(code, message string, details map[string]interface{}) *RosterError {
	return &RosterError{
		Type:    ErrorTypeModel,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *RosterError {
	return &RosterError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewBudgetError creates a new budget-exhausted error
func NewBudgetError(code, message string) *RosterError {
	return &RosterError{
		Type:    ErrorTypeBudget,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(code, message string) *RosterError {
	return &RosterError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *RosterError {
	return &RosterError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrorType reports whether err is a *RosterError of the given type
func IsErrorType(err error, t ErrorType) bool {
	re, ok := err.(*RosterError)
	return ok && re.Type == t
}

// Common error codes
const (
	ErrCodeInsufficientRoster  = "INSUFFICIENT_ROSTER"
	ErrCodeInsufficientSeniors = "INSUFFICIENT_SENIORS"
	ErrCodeMissingSpecialty    = "MISSING_SPECIALTY"
	ErrCodeCapacityShortfall   = "CAPACITY_SHORTFALL"
	ErrCodeCapacitySurplus     = "CAPACITY_SURPLUS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeConflictingFixed    = "CONFLICTING_FIXED_ASSIGNMENT"
	ErrCodeBudgetExhausted     = "BUDGET_EXHAUSTED"
	ErrCodeHardRuleViolated    = "HARD_RULE_VIOLATED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)
