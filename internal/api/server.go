// Package api exposes the planner over a JSON REST interface.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/taskflow/internal/service"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	planner *service.Planner
	log     *slog.Logger
	router  *gin.Engine
}

func NewServer(planner *service.Planner, log *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		planner: planner,
		log:     log,
		router:  router,
	}

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.POST("/users", s.handleCreateUser)

	authed := router.Group("/", requireUser())
	{
		authed.GET("/users/:id", s.handleGetUser)

		tasks := authed.Group("/tasks")
		tasks.GET("", s.handleListTasks)
		tasks.GET("/date/:date", s.handleTasksForDate)
		tasks.POST("", s.handleCreateTask)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.PATCH("/:id/status", s.handleChangeStatus)
		tasks.DELETE("/:id", s.handleDeleteTask)
		tasks.GET("/:id/timer", s.handleTimer)

		authed.GET("/calendar/:year/:month", s.handleMonth)
		authed.GET("/overview", s.handleOverview)

		authed.GET("/projects", s.handleListProjects)
		authed.POST("/projects", s.handleCreateProject)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
