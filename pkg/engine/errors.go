package engine

import (
	"fmt"

	"github.com/zen-systems/claimgate/pkg/codes"
)

// Error codes for the failure modes the engine can degrade through.
// Nothing here is fatal to a run: every failure leaves line items as
// they were before the failing phase and adds a ProcessingError.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeAdjudication = "ADJUDICATION_FAILURE"
	ErrCodeDecision     = "DECISION_MISMATCH"
)

// ProcessingError is a structured, recoverable error record returned
// alongside the best-effort result.
type ProcessingError struct {
	Severity codes.Severity    `json:"severity"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationError(message string, context map[string]string) *ProcessingError {
	return &ProcessingError{
		Severity: codes.SeverityWarning,
		Code:     ErrCodeValidation,
		Message:  message,
		Context:  context,
	}
}

func adjudicationError(phase string, err error) *ProcessingError {
	return &ProcessingError{
		Severity: codes.SeverityWarning,
		Code:     ErrCodeAdjudication,
		Message:  fmt.Sprintf("%s degraded to pass-through: %v", phase, err),
		Context:  map[string]string{"phase": phase},
	}
}

func decisionError(message string, context map[string]string) *ProcessingError {
	return &ProcessingError{
		Severity: codes.SeverityWarning,
		Code:     ErrCodeDecision,
		Message:  message,
		Context:  context,
	}
}
