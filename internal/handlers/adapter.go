package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-api/internal/middleware"
	"blog-api/internal/pipeline"
)

// Handle runs op through p for every request the route receives.
func Handle(p *pipeline.Pipeline, op *pipeline.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := newRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body. Expected a JSON object.",
			})
			return
		}

		status, body := p.Run(c.Request.Context(), op, req)
		if op.Kind == pipeline.Read {
			outcome := "miss"
			if req.CacheHit {
				outcome = "hit"
			}
			c.Set(middleware.CacheKey, outcome)
			c.Header("X-Cache", outcome)
		}

		switch b := body.(type) {
		case nil:
			c.Status(status)
		case json.RawMessage:
			c.Data(status, "application/json; charset=utf-8", b)
		default:
			c.JSON(status, b)
		}
	}
}

func newRequest(c *gin.Context) (*pipeline.Request, error) {
	u := c.Request.URL
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	req := &pipeline.Request{
		Method:   c.Request.Method,
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     u.EscapedPath(),
		RawQuery: u.RawQuery,
		Params:   make(map[string]any, len(c.Params)),
		Query:    make(map[string]any),
	}
	for _, p := range c.Params {
		req.Params[p.Key] = p.Value
	}
	for k, v := range u.Query() {
		if len(v) > 0 {
			req.Query[k] = v[0]
		}
	}

	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
		return req, nil
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if body == nil {
		body = make(map[string]any)
	}
	req.Body = body
	return req, nil
}
