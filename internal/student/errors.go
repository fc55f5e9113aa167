package student

import (
	"errors"
	"strings"
)

var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInternal          = errors.New("internal error")
)

const (
	FieldEmail = "email"
	FieldCNIC  = "cnic"
)

// DuplicateError reports a registration whose email or CNIC is already stored.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == FieldCNIC {
		return "CNIC already registered"
	}
	return "Email already registered"
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrAlreadyRegistered
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}
