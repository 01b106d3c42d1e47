package validation

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Required is a non-blank text field, trimmed and HTML-escaped.
func Required(field, message string) Rule {
	return Rule{Field: field, In: InBody, Tag: "text", Normalize: TrimEscape, Message: message}
}

// Optional is a text field that may be absent, but not blank when given.
func Optional(field, message string) Rule {
	return Rule{Field: field, In: InBody, Tag: "omitempty,text", Normalize: TrimEscape, Message: message}
}

// ID is a UUID identifier read from in.
func ID(in Location, field, message string) Rule {
	return Rule{Field: field, In: in, Tag: "uuid", Normalize: Trim, Message: message, Identifier: true}
}

// OptionalID is a UUID identifier that may be absent.
func OptionalID(in Location, field, message string) Rule {
	return Rule{Field: field, In: in, Tag: "omitempty,uuid", Normalize: Trim, Message: message, Identifier: true}
}

// IDList is a non-empty array of UUIDs.
func IDList(field, message string) Rule {
	return Rule{Field: field, In: InBody, Check: isIDList, Normalize: ToStrings, Message: message, Identifier: true}
}

// OptionalIDList is an array of UUIDs that may be absent.
func OptionalIDList(field, message string) Rule {
	return Rule{
		Field: field, In: InBody, Message: message, Identifier: true, Normalize: ToStrings,
		Check: func(raw any) bool { return raw == nil || isIDList(raw) },
	}
}

// Uint is an optional unsigned integer query parameter.
func Uint(field, message string) Rule {
	return Rule{Field: field, In: InQuery, Tag: "omitempty,number", Normalize: ToInt, Message: message}
}

// Timestamp is an optional RFC 3339 timestamp.
func Timestamp(field, message string) Rule {
	return Rule{
		Field: field, In: InBody, Message: message, Normalize: ToTime,
		Check: func(raw any) bool {
			if raw == nil {
				return true
			}
			s, ok := raw.(string)
			if !ok {
				return false
			}
			_, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
			return err == nil
		},
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slug is an optional permalink of lowercase words joined by hyphens.
func Slug(field, message string) Rule {
	return Rule{
		Field: field, In: InBody, Normalize: Trim, Message: message,
		Check: func(raw any) bool {
			if raw == nil {
				return true
			}
			s, ok := raw.(string)
			return ok && len(s) <= 200 && slugPattern.MatchString(strings.TrimSpace(s))
		},
	}
}

func isIDList(raw any) bool {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return false
	}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return false
		}
		if _, err := uuid.Parse(s); err != nil {
			return false
		}
	}
	return true
}

// Trim trims surrounding whitespace from strings.
func Trim(raw any) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return raw
}

// TrimEscape trims a string and escapes HTML special characters.
func TrimEscape(raw any) any {
	if s, ok := raw.(string); ok {
		return html.EscapeString(strings.TrimSpace(s))
	}
	return raw
}

// ToInt converts a digit string into an int.
func ToInt(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return raw
	}
	return n
}

// ToStrings converts a JSON array of strings into []string.
func ToStrings(raw any) any {
	items, ok := raw.([]any)
	if !ok {
		return raw
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// ToTime parses an RFC 3339 string.
func ToTime(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return raw
	}
	return ts
}
