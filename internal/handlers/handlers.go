// Package handlers declares the blog's route operations and adapts them to gin.
package handlers

import (
	"context"

	"blog-api/internal/config"
	"blog-api/internal/models"
	"blog-api/internal/pipeline"
	"blog-api/internal/repository"
	"blog-api/internal/validation"
)

// AuthorStore is the data layer the author operations need.
type AuthorStore interface {
	Find(ctx context.Context, filter repository.Filter, page repository.Page) ([]models.Author, error)
	FindOne(ctx context.Context, id string) (*models.Author, error)
	Create(ctx context.Context, a *models.Author) error
	Update(ctx context.Context, id string, patch map[string]any) (*models.Author, error)
	Delete(ctx context.Context, id string) error
}

// PostStore is the data layer the post operations need.
type PostStore interface {
	Find(ctx context.Context, filter repository.Filter, page repository.Page) ([]models.Post, error)
	FindOne(ctx context.Context, id string) (*models.Post, error)
	FindByPermalink(ctx context.Context, permalink string) (*models.Post, error)
	Create(ctx context.Context, p *models.Post, authorIDs []string) error
	Update(ctx context.Context, id string, patch map[string]any, authorIDs []string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// CommentStore is the data layer the comment operations need.
type CommentStore interface {
	Find(ctx context.Context, filter repository.Filter, page repository.Page) ([]models.Comment, error)
	FindOne(ctx context.Context, id string) (*models.Comment, error)
	ForPost(ctx context.Context, postID string, page repository.Page) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, id string, patch map[string]any) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Handlers builds the operation of every resource route.
type Handlers struct {
	authors    AuthorStore
	posts      PostStore
	comments   CommentStore
	pagination config.PaginationConfig
}

// New creates Handlers over the given stores.
func New(authors AuthorStore, posts PostStore, comments CommentStore, pagination config.PaginationConfig) *Handlers {
	return &Handlers{authors: authors, posts: posts, comments: comments, pagination: pagination}
}

var pagingRules = []validation.Rule{
	validation.Uint("offset", "Offset must be a non-negative integer"),
	validation.Uint("limit", "Limit must be a non-negative integer"),
}

func (h *Handlers) page(req *pipeline.Request) repository.Page {
	limit := req.QueryInt("limit", 0)
	if limit <= 0 {
		limit = h.pagination.DefaultLimit
	}
	if h.pagination.MaxLimit > 0 && limit > h.pagination.MaxLimit {
		limit = h.pagination.MaxLimit
	}
	return repository.Page{Offset: req.QueryInt("offset", 0), Limit: limit}
}

// patch maps the body fields present in req onto their columns. Nulls are skipped.
func patch(req *pipeline.Request, columns map[string]string) map[string]any {
	out := make(map[string]any, len(columns))
	for field, column := range columns {
		if v, ok := req.Body[field]; ok && v != nil {
			out[column] = v
		}
	}
	return out
}

func idRule(resource string) validation.Rule {
	return validation.ID(validation.InParam, "id", "Invalid "+resource+" ID")
}
