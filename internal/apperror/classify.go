package apperror

import (
	"errors"
	"net/http"
)

// FieldError is the wire shape of a field-level failure.
type FieldError struct {
	Error string `json:"error"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// NotFoundBody is the wire shape of a NotFound failure.
type NotFoundBody struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// ConflictBody is the wire shape of a UniquenessConflict failure.
type ConflictBody struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Names used in response bodies.
const (
	NameValidation  = "ValidationError"
	NameMalformedID = "MalformedIdentifier"
	NameNotFound    = "NotFoundError"
	NameConflict    = "UniquenessConflict"
)

// Classified is the outward form of a failure. It is immutable.
type Classified struct {
	kind   Kind
	status int
	body   any
}

func (c Classified) Kind() Kind  { return c.kind }
func (c Classified) Status() int { return c.status }

// Body returns the response payload. It is nil for KindUnclassified.
func (c Classified) Body() any { return c.body }

// Classify maps err to its outward kind. Branches are tried in table order and
// the first match wins. Anything unrecognized is KindUnclassified with a 500 and no body.
func Classify(err error) Classified {
	var (
		validation *ValidationError
		malformed  *MalformedIDError
		notFound   *NotFoundError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		items := make([]FieldError, len(validation.Violations))
		for i, v := range validation.Violations {
			name := NameValidation
			if v.Identifier {
				name = NameMalformedID
			}
			items[i] = FieldError{Error: v.Message, Name: name, Path: v.Field, Value: v.Value}
		}
		return Classified{kind: KindValidation, status: http.StatusUnprocessableEntity, body: items}
	case errors.As(err, &malformed):
		return Classified{kind: KindMalformedID, status: http.StatusUnprocessableEntity, body: FieldError{
			Error: "Invalid identifier",
			Name:  NameMalformedID,
			Path:  malformed.Path,
			Value: malformed.Value,
		}}
	case errors.As(err, &notFound):
		return Classified{kind: KindNotFound, status: http.StatusNotFound, body: NotFoundBody{
			Name:     NameNotFound,
			Message:  notFound.Error(),
			Resource: notFound.Resource,
			ID:       notFound.ID,
		}}
	case errors.As(err, &conflict):
		return Classified{kind: KindConflict, status: http.StatusUnprocessableEntity, body: ConflictBody{
			Message: conflict.Error(),
			Name:    NameConflict,
		}}
	default:
		return Classified{kind: KindUnclassified, status: http.StatusInternalServerError}
	}
}
