package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"draftsmith/pkg/utils"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "draftsmith",
		"status":  "ok",
		"runs":    len(s.Queue.List()),
	})
}

// GET /api/runs
func (s *Server) handleGetRuns(c echo.Context) error {
	runs := s.Queue.List()
	// results can be large; the list only carries status
	for i := range runs {
		runs[i].Result = nil
	}
	return c.JSON(http.StatusOK, runs)
}

// GET /api/runs/:id
func (s *Server) handleGetRun(c echo.Context) error {
	info, ok := s.Queue.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("run not found"))
	}
	return c.JSON(http.StatusOK, info)
}
