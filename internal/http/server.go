// README: API gateway; registers the run report routes on a gin engine.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sharetaxi/internal/config"
	"sharetaxi/internal/http/handlers"
	"sharetaxi/internal/http/middleware"
)

type ServerDeps struct {
	Store  handlers.RunStore
	Cache  handlers.RunCache
	Runner handlers.Runner
	Base   config.Config
	Limits handlers.Limits
}

type Server struct {
	runs *handlers.RunHandler
}

func NewServer(deps ServerDeps) *Server {
	limits := deps.Limits
	if limits.MaxList <= 0 {
		limits.MaxList = 100
	}
	return &Server{
		runs: handlers.NewRunHandler(deps.Store, deps.Cache, deps.Runner, deps.Base, limits),
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.GET("/runs", s.runs.List)
	api.POST("/runs", s.runs.Create)
	api.GET("/runs/top", s.runs.Top)
	api.GET("/runs/:id", s.runs.Get)
	api.GET("/runs/:id/summary", s.runs.Summary)
	return r
}
