package handlers

import (
	"context"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"blog-api/internal/models"
	"blog-api/internal/pipeline"
	"blog-api/internal/validation"
)

var postColumns = map[string]string{
	"title":     "title",
	"subtitle":  "subtitle",
	"permalink": "permalink",
	"content":   "content",
	"published": "published",
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// permalinkFor derives a permalink from a title that was HTML-escaped on input.
func permalinkFor(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(html.UnescapeString(title)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 200 {
		s = strings.TrimRight(s[:200], "-")
	}
	if s == "" {
		return "post"
	}
	return s
}

// ListPosts handles GET /posts
func (h *Handlers) ListPosts() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.list",
		Kind:     pipeline.Read,
		Resource: "/posts",
		Rules:    pagingRules,
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			posts, err := h.posts.Find(ctx, nil, h.page(req))
			return pipeline.Response{Body: posts}, err
		},
	}
}

// GetPost handles GET /posts/:id
func (h *Handlers) GetPost() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.get",
		Kind:     pipeline.Read,
		Resource: "/posts",
		Rules:    []validation.Rule{idRule("post")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			post, err := h.posts.FindOne(ctx, req.Param("id"))
			return pipeline.Response{Body: post}, err
		},
	}
}

// GetPostByPermalink handles GET /posts/permalink/:permalink
func (h *Handlers) GetPostByPermalink() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.permalink",
		Kind:     pipeline.Read,
		Resource: "/posts",
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			post, err := h.posts.FindByPermalink(ctx, req.Param("permalink"))
			return pipeline.Response{Body: post}, err
		},
	}
}

// CreatePost handles POST /posts
func (h *Handlers) CreatePost() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.create",
		Kind:     pipeline.Write,
		Resource: "/posts",
		Rules: []validation.Rule{
			validation.Required("title", "Title is required"),
			validation.Optional("subtitle", "Subtitle must not be empty"),
			validation.Slug("permalink", "Permalink must be lowercase words separated by hyphens"),
			validation.Required("content", "Content is required"),
			validation.Timestamp("published", "Published must be an RFC 3339 timestamp"),
			validation.IDList("authors", "At least one valid author ID is required"),
		},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			post := models.Post{
				Title:     req.String("title"),
				Subtitle:  req.String("subtitle"),
				Permalink: req.String("permalink"),
				Content:   req.String("content"),
				Comments:  []models.Comment{},
			}
			if post.Permalink == "" {
				post.Permalink = permalinkFor(post.Title)
			}
			if ts, ok := req.Body["published"].(time.Time); ok {
				post.Published = ts.UTC()
			}
			if err := h.posts.Create(ctx, &post, req.Strings("authors")); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusCreated, Body: post}, nil
		},
	}
}

// UpdatePost handles PUT /posts/:id
func (h *Handlers) UpdatePost() *pipeline.Operation {
	return &pipeline.Operation{
		Name:     "posts.update",
		Kind:     pipeline.Write,
		Resource: "/posts",
		Rules: []validation.Rule{
			idRule("post"),
			validation.Optional("title", "Title must not be empty"),
			validation.Optional("subtitle", "Subtitle must not be empty"),
			validation.Slug("permalink", "Permalink must be lowercase words separated by hyphens"),
			validation.Optional("content", "Content must not be empty"),
			validation.Timestamp("published", "Published must be an RFC 3339 timestamp"),
			validation.OptionalIDList("authors", "Authors must be a non-empty list of valid author IDs"),
		},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			post, err := h.posts.Update(ctx, req.Param("id"), patch(req, postColumns), req.Strings("authors"))
			if err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Body: post}, nil
		},
	}
}

// DeletePost handles DELETE /posts/:id
// The post's comments go with it.
func (h *Handlers) DeletePost() *pipeline.Operation {
	return &pipeline.Operation{
		Name:        "posts.delete",
		Kind:        pipeline.Write,
		Resource:    "/posts",
		Invalidates: []string{"/comments"},
		Rules:       []validation.Rule{idRule("post")},
		Do: func(ctx context.Context, req *pipeline.Request) (pipeline.Response, error) {
			if err := h.posts.Delete(ctx, req.Param("id")); err != nil {
				return pipeline.Response{}, err
			}
			return pipeline.Response{Status: http.StatusNoContent}, nil
		},
	}
}
