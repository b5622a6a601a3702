package publish

import (
	"errors"
	"fmt"
)

// Failure codes carried by PublishError.
const (
	CodeFetchBaseline = "fetch_baseline"
	CodeValidation    = "validation"
	CodeEmptyBatch    = "empty_batch"
	CodeExecute       = "execute"
)

// PublishError reports the step a publish failed at. Err keeps the upstream
// cause, so errors.Is(err, hierarchy.ErrInvalid) works for validation
// failures.
type PublishError struct {
	Code    string
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("publish %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("publish %s: %s", e.Code, e.Message)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ErrorCode returns the PublishError code in err's chain, or "".
func ErrorCode(err error) string {
	var perr *PublishError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}
