package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadySubmitted  = errors.New("response already submitted")
	ErrSubmissionInvalid = errors.New("submission invalid")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
)

// SubmissionError lists every problem that blocked a submit
type SubmissionError struct {
	Problems []string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSubmissionInvalid, strings.Join(e.Problems, "; "))
}

func (e *SubmissionError) Unwrap() error {
	return ErrSubmissionInvalid
}

// validate is the shared validator for request and model structs
var validate = validator.New()

// Validate checks struct tags and wraps failures in ErrValidation
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
