package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDomain       = errors.New("domain rule violated")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("Token inválido o expirado")
)

const (
	MSG_REQUIRED     = "Este campo es obligatorio."
	MSG_INVALID_DATE = "Formato de fecha inválido, use YYYY-MM-DD."
)

// ValidationError collects field level failures so they can be returned
// together as {"errors": {"field": ["msg"]}}.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func FieldError(field, message string) error {
	return NewValidationError().Add(field, message)
}

type domainError struct {
	message string
}

func (e *domainError) Error() string {
	return e.message
}

func (e *domainError) Is(target error) bool {
	return target == ErrDomain
}

// DomainError reports a business rule failure with a client facing message.
func DomainError(message string) error {
	return &domainError{message: message}
}

func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
