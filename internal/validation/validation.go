// Package validation runs declarative field rules against request data before
// any operation sees it.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"blog-api/internal/apperror"
)

// Location says where a field is read from.
type Location int

const (
	InBody Location = iota
	InParam
	InQuery
)

// Source is the request data a rule set is evaluated against.
type Source interface {
	Lookup(in Location, field string) (any, bool)
	Set(in Location, field string, value any)
}

// Rule declares one field check. Check takes precedence over Tag when both are set.
type Rule struct {
	Field string
	In    Location
	// Tag is a go-playground/validator tag evaluated against the raw value.
	Tag string
	// Check is a custom predicate over the raw value.
	Check func(raw any) bool
	// Normalize canonicalizes a present value once the rule passes.
	Normalize func(raw any) any
	Message   string
	// Identifier marks identifier format rules.
	Identifier bool
}

// engine is safe for concurrent use once its custom tags are registered.
var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("text", isText); err != nil {
		panic(err)
	}
	return v
}

// isText accepts strings with at least one non-space character.
func isText(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}

func (r Rule) passes(raw any) bool {
	if r.Check != nil {
		return r.Check(raw)
	}
	if r.Tag == "" {
		return true
	}
	return engine.Var(raw, r.Tag) == nil
}

// Run evaluates every rule, collecting violations in declaration order. Passing
// rules normalize their value in src; failing ones leave it untouched. When any
// rule fails the returned error is an *apperror.ValidationError holding all of them.
func Run(src Source, rules []Rule) error {
	var violations []apperror.Violation
	for _, r := range rules {
		raw, present := src.Lookup(r.In, r.Field)
		if !r.passes(raw) {
			violations = append(violations, apperror.Violation{
				Field:      r.Field,
				Message:    r.Message,
				Value:      raw,
				Identifier: r.Identifier,
			})
			continue
		}
		if present && r.Normalize != nil {
			src.Set(r.In, r.Field, r.Normalize(raw))
		}
	}
	if len(violations) > 0 {
		return apperror.Invalid(violations...)
	}
	return nil
}
