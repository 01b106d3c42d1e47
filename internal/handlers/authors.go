package handlers

import (
	"context"
	"net/http"

	"blog-api/internal/models"
	"blog-api/internal/pipeline"
	"blog-api/internal/validation"
)

var authorColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
}

// ListAuthors handles GET /authors
func (h *Handlers) ListAuthors() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "authors.list",
		Kind:     pipeline.Read,
		Resource: "/authors",
		Rules:    pagingRules,
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			authors, err := h.authors.Find(ctx, nil, h.page(req))
			return pipeline.Response{Body: authors}, err
		},
	}
}

// GetAuthor handles GET /authors/:id
func (h *Handlers) GetAuthor() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "authors.get",
		Kind:     pipeline.Read,
		Resource: "/authors",
		Rules:    []validation.Rule{idRule("author")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			author, err := h.authors.FindOne(ctx, req.Param("id"))
			return pipeline.Response{Body: author}, err
		},
	}
}

// CreateAuthor handles POST /authors
func (h *Handlers) CreateAuthor() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "authors.create",
		Kind:     pipeline.Write,
		Resource: "/authors",
		Rules: []validation.Rule{
			validation.Required("firstName", "First name is required"),
			validation.Required("lastName", "Last name is required"),
		},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			author := models.Author{
				FirstName: req.String("firstName"),
				LastName:  req.String("lastName"),
			}
			if err := h.authors.Create(ctx, &author); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusCreated, Body: author}, nil
		},
	}
}

// UpdateAuthor handles PUT /authors/:id
// Posts embed their authors, so cached posts go stale too.
func (h *Handlers) UpdateAuthor() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "authors.update",
		Kind:        pipeline.Write,
		Resource:    "/authors",
		Invalidates: []string{"/posts"},
		Rules: []validation.Rule{
			idRule("author"),
			validation.Optional("firstName", "First name must not be empty"),
			validation.Optional("lastName", "Last name must not be empty"),
		},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			author, err := h.authors.Update(ctx, req.Param("id"), patch(req, authorColumns))
			if err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Body: author}, nil
		},
	}
}

// DeleteAuthor handles DELETE /authors/:id
func (h *Handlers) DeleteAuthor() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "authors.delete",
		Kind:        pipeline.Write,
		Resource:    "/authors",
		Invalidates: []string{"/posts"},
		Rules:       []validation.Rule{idRule("author")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			if err := h.authors.Delete(ctx, req.Param("id")); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusNoContent}, nil
		},
	}
}
