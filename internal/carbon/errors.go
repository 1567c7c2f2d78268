package carbon

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrMissingValue     = errors.New("missing value")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemplateNotFound = errors.New("template not found")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrCycle            = errors.New("distribution partner cycle")
)

// MissingValueError reports a quantity that has neither a fact nor a default.
type MissingValueError struct {
	Field Field
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("failed to find value or default for %s", e.Field)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}

// TemplateError reports a template that is not present in a defaults document.
type TemplateError struct {
	Kind     string
	Template string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s not found in %s defaults", e.Template, e.Kind)
}

func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplateNotFound
}
