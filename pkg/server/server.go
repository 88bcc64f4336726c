package server

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"draftsmith/pkg/queue"
	"draftsmith/pkg/schema"
)

// RunRequest is the body of POST /api/runs. Zero fields keep the server's
// configuration.
type RunRequest struct {
	Chapters int                  `json:"chapters,omitempty"`
	Theme    string               `json:"theme,omitempty"`
	Seed     uint64               `json:"seed,omitempty"`
	Strict   bool                 `json:"strict,omitempty"`
	Plot     *schema.PlotSkeleton `json:"plot,omitempty"`
}

// JobFactory turns a request into a queued job.
type JobFactory func(req RunRequest) (queue.Job, error)

type Server struct {
	Echo   *echo.Echo
	Queue  queue.Queue
	NewJob JobFactory
	Logger *log.Logger
	Ctx    context.Context
}

func NewServer(ctx context.Context, q queue.Queue, newJob JobFactory, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Echo:   e,
		Queue:  q,
		NewJob: newJob,
		Logger: logger,
		Ctx:    ctx,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/parse", s.handlePostParse) // summary text -> schema.Summary
	api.POST("/runs", s.handlePostRuns)   // enqueue a run, stream progress
	api.GET("/runs", s.handleGetRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

func (s *Server) Start(addr string) error {
	s.Logger.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down server")
	err := s.Echo.Shutdown(ctx)
	s.Queue.Stop()
	return err
}
