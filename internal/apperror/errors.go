// Package apperror defines the failures the request pipeline understands and
// classifies them into the outward error taxonomy.
package apperror

import (
	"fmt"
	"strings"
)

// Kind is an outward error kind. The set is closed.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindMalformedID
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationFailure"
	case KindMalformedID:
		return "MalformedIdentifier"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "UniquenessConflict"
	default:
		return "Unclassified"
	}
}

// Failure is implemented only by the failure types in this package.
type Failure interface {
	error
	Kind() Kind
}

// Violation is one failed field rule.
type Violation struct {
	Field   string
	Message string
	Value   any
	// Identifier marks a failed identifier format check.
	Identifier bool
}

// ValidationError carries every violation found for a request, in rule order.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func (*ValidationError) Kind() Kind { return KindValidation }

// MalformedIDError is reported by the data layer for an identifier it cannot parse.
type MalformedIDError struct {
	Path  string
	Value string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed identifier %q for %s", e.Value, e.Path)
}

func (*MalformedIDError) Kind() Kind { return KindMalformedID }

// NotFoundError is reported when exactly one record was expected and none matched.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (*NotFoundError) Kind() Kind { return KindNotFound }

// ConflictError is reported when a write violates a uniqueness constraint.
type ConflictError struct {
	Resource string
	Field    string
	Value    any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %v already exists", e.Resource, e.Field, e.Value)
}

func (*ConflictError) Kind() Kind { return KindConflict }

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// MalformedID builds a MalformedIDError.
func MalformedID(path, value string) error {
	return &MalformedIDError{Path: path, Value: value}
}

// Conflict builds a ConflictError.
func Conflict(resource, field string, value any) error {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// Invalid builds a ValidationError from violations.
func Invalid(violations ...Violation) error {
	return &ValidationError{Violations: violations}
}
