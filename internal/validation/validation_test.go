package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blog-api/internal/apperror"
)

// fields is a Source over three plain maps.
type fields map[Location]map[string]any

func (f fields) Lookup(in Location, field string) (any, bool) {
	v, ok := f[in][field]
	return v, ok
}

func (f fields) Set(in Location, field string, value any) {
	if f[in] == nil {
		f[in] = map[string]any{}
	}
	f[in][field] = value
}

func body(m map[string]any) fields { return fields{InBody: m} }

func violations(t *testing.T, err error) []apperror.Violation {
	t.Helper()
	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Violations
}

func TestRun_Passes(t *testing.T) {
	src := body(map[string]any{"firstName": "  Ada ", "lastName": "Lovelace"})
	err := Run(src, []Rule{
		Required("firstName", "First name is required"),
		Required("lastName", "Last name is required"),
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", src[InBody]["firstName"])
}

func TestRun_ReportsEveryViolationInOrder(t *testing.T) {
	src := body(map[string]any{"title": "", "content": 12})
	err := Run(src, []Rule{
		Required("title", "Title is required"),
		Optional("subtitle", "Subtitle must be text"),
		Required("content", "Content is required"),
		IDList("authors", "At least one author is required"),
	})

	got := violations(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "title", got[0].Field)
	require.Equal(t, "", got[0].Value)
	require.Equal(t, "content", got[1].Field)
	require.Equal(t, 12, got[1].Value)
	require.Equal(t, "authors", got[2].Field)
	require.Nil(t, got[2].Value)
	require.True(t, got[2].Identifier)
}

func TestRun_NormalizesOnlyPassingFields(t *testing.T) {
	src := body(map[string]any{
		"title":   "  <b>Hi</b>  ",
		"content": "   ",
	})
	err := Run(src, []Rule{
		Required("title", "Title is required"),
		Required("content", "Content is required"),
	})
	require.Len(t, violations(t, err), 1)
	require.Equal(t, "&lt;b&gt;Hi&lt;/b&gt;", src[InBody]["title"])
	// the failing field keeps its raw value
	require.Equal(t, "   ", src[InBody]["content"])
}

func TestRun_AbsentOptionalStaysAbsent(t *testing.T) {
	src := body(map[string]any{})
	require.NoError(t, Run(src, []Rule{
		Optional("subtitle", "Subtitle must be text"),
		Timestamp("published", "Published must be an RFC 3339 timestamp"),
		OptionalIDList("authors", "Authors must be author IDs"),
		Slug("permalink", "Invalid permalink"),
	}))
	_, ok := src.Lookup(InBody, "subtitle")
	require.False(t, ok)
}

func TestRun_Identifier(t *testing.T) {
	src := fields{InParam: {"id": "not-a-valid-id"}}
	err := Run(src, []Rule{ID(InParam, "id", "Invalid author ID")})

	got := violations(t, err)
	require.Len(t, got, 1)
	require.Equal(t, apperror.Violation{Field: "id", Message: "Invalid author ID", Value: "not-a-valid-id", Identifier: true}, got[0])

	src = fields{InParam: {"id": "6f1c1f2e-4a8b-4f7a-9a51-3b0f7d7f2c11"}}
	require.NoError(t, Run(src, []Rule{ID(InParam, "id", "Invalid author ID")}))
}

func TestRun_Conversions(t *testing.T) {
	src := fields{
		InQuery: {"limit": "5", "offset": "10"},
		InBody: {
			"published": "2024-03-01T10:00:00Z",
			"authors":   []any{"6f1c1f2e-4a8b-4f7a-9a51-3b0f7d7f2c11"},
		},
	}
	require.NoError(t, Run(src, []Rule{
		Uint("limit", "Limit must be a positive integer"),
		Uint("offset", "Offset must be a positive integer"),
		Timestamp("published", "Published must be an RFC 3339 timestamp"),
		IDList("authors", "At least one author is required"),
	}))
	require.Equal(t, 5, src[InQuery]["limit"])
	require.Equal(t, 10, src[InQuery]["offset"])
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), src[InBody]["published"])
	require.Equal(t, []string{"6f1c1f2e-4a8b-4f7a-9a51-3b0f7d7f2c11"}, src[InBody]["authors"])
}

func TestRun_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		src  fields
	}{
		{"negative limit", Uint("limit", "bad"), fields{InQuery: {"limit": "-1"}}},
		{"empty author list", IDList("authors", "bad"), body(map[string]any{"authors": []any{}})},
		{"author list with junk", IDList("authors", "bad"), body(map[string]any{"authors": []any{"x"}})},
		{"timestamp not a string", Timestamp("published", "bad"), body(map[string]any{"published": 5.0})},
		{"slug with spaces", Slug("permalink", "bad"), body(map[string]any{"permalink": "a b"})},
		{"slug not a string", Slug("permalink", "bad"), body(map[string]any{"permalink": 1.0})},
		{"blank optional", Optional("subtitle", "bad"), body(map[string]any{"subtitle": " "})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, violations(t, Run(tt.src, []Rule{tt.rule})), 1)
		})
	}
}
