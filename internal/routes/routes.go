package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"blog-api/internal/auth"
	"blog-api/internal/config"
	"blog-api/internal/handlers"
	"blog-api/internal/middleware"
	"blog-api/internal/pipeline"
	"blog-api/internal/realtime"
	"blog-api/internal/telemetry"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Handlers *handlers.Handlers
	Pipeline *pipeline.Pipeline
	Hub      *realtime.Hub
	// Signer guards write routes; nil leaves them open.
	Signer   *auth.Signer
	Users    []config.UserEntry
	Gatherer prometheus.Gatherer
	Metrics  *telemetry.Metrics
	Logger   *zap.Logger
}

func SetupRoutes(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ginRouter := gin.New()
	ginRouter.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log, d.Metrics),
		middleware.CORS(),
	)

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Blog API is running",
		})
	})
	if d.Gatherer != nil {
		ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.Hub != nil {
		ginRouter.GET("/ws", handlers.ChangeFeed(d.Hub, log))
	}

	// Reads are public; writes need an editor token when auth is enabled
	public := ginRouter.Group("")
	editors := ginRouter.Group("")
	if d.Signer != nil {
		public.POST("/login", handlers.Login(d.Signer, d.Users, log))
		editors.Use(middleware.RequireEditor(d.Signer))
	}

	h, p := d.Handlers, d.Pipeline
	run := func(op *pipeline.Operation) gin.HandlerFunc { return handlers.Handle(p, op) }

	// Author endpoints
	public.GET("/authors", run(h.ListAuthors()))
	public.GET("/authors/:id", run(h.GetAuthor()))
	editors.POST("/authors", run(h.CreateAuthor()))
	editors.PUT("/authors/:id", run(h.UpdateAuthor()))
	editors.DELETE("/authors/:id", run(h.DeleteAuthor()))

	// Post endpoints
	public.GET("/posts", run(h.ListPosts()))
	public.GET("/posts/:id", run(h.GetPost()))
	public.GET("/posts/permalink/:permalink", run(h.GetPostByPermalink()))
	public.GET("/posts/:id/comments", run(h.ListPostComments()))
	editors.POST("/posts", run(h.CreatePost()))
	editors.PUT("/posts/:id", run(h.UpdatePost()))
	editors.DELETE("/posts/:id", run(h.DeletePost()))
	editors.POST("/posts/:id/comments", run(h.CreatePostComment()))

	// Comment endpoints
	public.GET("/comments", run(h.ListComments()))
	public.GET("/comments/:id", run(h.GetComment()))
	editors.POST("/comments", run(h.CreateComment()))
	editors.PUT("/comments/:id", run(h.UpdateComment()))
	editors.DELETE("/comments/:id", run(h.DeleteComment()))

	return ginRouter
}
