package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPreviousStep is returned by Retreat on the first step.
	ErrNoPreviousStep = errors.New("booking: already at first step")

	// ErrNoNextStep is returned by Advance on the details step; Submit finishes the wizard.
	ErrNoNextStep = errors.New("booking: already at last step")

	// ErrNotAtDetailsStep is returned by Submit before the details step is reached.
	ErrNotAtDetailsStep = errors.New("booking: submit is only available on the details step")

	// ErrAlreadySubmitted is returned by any mutation after a successful submission.
	ErrAlreadySubmitted = errors.New("booking: appointment already submitted")

	// ErrSubmissionInFlight is returned by Submit while a previous submit is pending.
	ErrSubmissionInFlight = errors.New("booking: submission in progress")
)

// ValidationError reports an unmet step precondition. Reason is the stable
// machine-readable cause; Message is shown inline to the patient.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: %s", e.Reason)
}

func invalid(field, reason, message string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
