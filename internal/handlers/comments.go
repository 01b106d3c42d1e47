package handlers

import (
	"context"
	"net/http"
	"time"

	"blog-api/internal/models"
	"blog-api/internal/pipeline"
	"blog-api/internal/validation"
)

var commentColumns = map[string]string{
	"content":   "content",
	"user":      "user",
	"published": "published",
}

func commentFrom(req *pipeline.Request, postID string) models.Comment {
	c := models.Comment{
		Content: req.String("content"),
		User:    req.String("user"),
		PostID:  postID,
	}
	if ts, ok := req.Body["published"].(time.Time); ok {
		c.Published = ts.UTC()
	}
	return c
}

// ListComments handles GET /comments
func (h *Handlers) ListComments() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "comments.list",
		Kind:     pipeline.Read,
		Resource: "/comments",
		Rules:    pagingRules,
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comments, err := h.comments.Find(ctx, nil, h.page(req))
			return pipeline.Response{Body: comments}, err
		},
	}
}

// GetComment handles GET /comments/:id
func (h *Handlers) GetComment() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "comments.get",
		Kind:     pipeline.Read,
		Resource: "/comments",
		Rules:    []validation.Rule{idRule("comment")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comment, err := h.comments.FindOne(ctx, req.Param("id"))
			return pipeline.Response{Body: comment}, err
		},
	}
}

// ListPostComments handles GET /posts/:id/comments
func (h *Handlers) ListPostComments() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.comments.list",
		Kind:     pipeline.Read,
		Resource: "/comments",
		Rules:    append([]validation.Rule{idRule("post")}, pagingRules...),
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comments, err := h.comments.ForPost(ctx, req.Param("id"), h.page(req))
			return pipeline.Response{Body: comments}, err
		},
	}
}

var commentBodyRules = []validation.Rule{
	validation.Required("content", "Content is required"),
	validation.Optional("user", "User must not be empty"),
	validation.Timestamp("published", "Published must be an RFC 3339 timestamp"),
}

// CreatePostComment handles POST /posts/:id/comments
func (h *Handlers) CreatePostComment() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "posts.comments.create",
		Kind:        pipeline.Write,
		Resource:    "/comments",
		Invalidates: []string{"/posts"},
		Rules:       append([]validation.Rule{idRule("post")}, commentBodyRules...),
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comment := commentFrom(req, req.Param("id"))
			if err := h.comments.Create(ctx, &comment); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusCreated, Body: comment}, nil
		},
	}
}

// CreateComment handles POST /comments
func (h *Handlers) CreateComment() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "comments.create",
		Kind:        pipeline.Write,
		Resource:    "/comments",
		Invalidates: []string{"/posts"},
		Rules: append(append([]validation.Rule{}, commentBodyRules...),
			validation.ID(validation.InBody, "post", "A valid post ID is required")),
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comment := commentFrom(req, req.String("post"))
			if err := h.comments.Create(ctx, &comment); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusCreated, Body: comment}, nil
		},
	}
}

// UpdateComment handles PUT /comments/:id
// A comment cannot move to another post.
func (h *Handlers) UpdateComment() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "comments.update",
		Kind:        pipeline.Write,
		Resource:    "/comments",
		Invalidates: []string{"/posts"},
		Rules: []validation.Rule{
			idRule("comment"),
			validation.Optional("content", "Content must not be empty"),
			validation.Optional("user", "User must not be empty"),
			validation.Timestamp("published", "Published must be an RFC 3339 timestamp"),
		},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			comment, err := h.comments.Update(ctx, req.Param("id"), patch(req, commentColumns))
			if err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Body: comment}, nil
		},
	}
}

// DeleteComment handles DELETE /comments/:id
func (h *Handlers) DeleteComment() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "comments.delete",
		Kind:        pipeline.Write,
		Resource:    "/comments",
		Invalidates: []string{"/posts"},
		Rules:       []validation.Rule{idRule("comment")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			if err := h.comments.Delete(ctx, req.Param("id")); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusNoContent}, nil
		},
	}
}
