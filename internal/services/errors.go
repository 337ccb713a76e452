package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrGeneration   = errors.New("generation failed")
	ErrInvalidPlan  = errors.New("plan does not match the expected shape")
)

// GenerationError wraps any failure of an AI call, including responses that
// cannot be parsed or validated. errors.Is(err, ErrGeneration) matches it.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

func generationError(op string, err error) error {
	return &GenerationError{Op: op, Err: err}
}
