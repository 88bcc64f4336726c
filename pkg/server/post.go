package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"draftsmith/pkg/queue"
	"draftsmith/pkg/schema"
	"draftsmith/pkg/story"
	"draftsmith/pkg/utils"
)

type parseReq struct {
	Text string              `json:"text"`
	Cast []schema.CastMember `json:"cast"`
}

// POST /api/parse
func (s *Server) handlePostParse(c echo.Context) error {
	var req parseReq
	if err := c.Bind(&req); err != nil {
		s.Logger.Error("invalid JSON in /api/parse", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	summary, err := story.ParseSummary(req.Text, req.Cast)
	if err != nil {
		var fe *story.FormatError
		if errors.As(err, &fe) {
			return c.JSON(http.StatusUnprocessableEntity, fe)
		}
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, summary)
}

// POST /api/runs
func (s *Server) handlePostRuns(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		s.Logger.Error("invalid JSON in /api/runs", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Chapters < 0 {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("chapters must not be negative"))
	}

	job, err := s.NewJob(req)
	if err != nil {
		s.Logger.Error("failed preparing run", "error", err)
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}

	ticket, err := s.Queue.Add(job)
	switch {
	case errors.Is(err, queue.ErrFull), errors.Is(err, queue.ErrStopped):
		return c.JSON(http.StatusServiceUnavailable, utils.ErrJSON(err.Error()))
	case err != nil:
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	s.Logger.Info("run queued", "id", ticket.ID, "label", job.Label)

	w, err := utils.NewSSEWriter(c)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Event("queued", map[string]string{"id": ticket.ID, "label": job.Label}); err != nil {
		return nil
	}

	for e := range ticket.Events {
		if cancelled(c) {
			s.Logger.Warn("client left, run continues", "id", ticket.ID)
			return nil
		}
		_ = w.Event("progress", e)
	}

	out := <-ticket.Done
	if out.Err != nil {
		return w.Event("error", map[string]string{"id": ticket.ID, "error": out.Err.Error()})
	}
	return w.Event("done", out.Result)
}

func cancelled(c echo.Context) bool {
	select {
	case <-c.Request().Context().Done():
		return true
	default:
		return false
	}
}
