// Package httpserver exposes the call controller over a small HTTP API and
// streams the live event feed over WebSocket.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/calllog"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/controller"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/scenario"
)

// Server bundles the router and its dependencies.
type Server struct {
	Echo   *echo.Echo
	ctrl   *controller.Controller
	hub    *Hub
	logDir string
}

type startRequest struct {
	Scenario string `json:"scenario"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Scenario  string `json:"scenario"`
	State     string `json:"state"`
}

type scenarioInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Persona string `json:"persona"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New constructs the HTTP server with routes.
func New(ctrl *controller.Controller, hub *Hub, logDir string) *Server {
	s := &Server{
		Echo:   newRouter(),
		ctrl:   ctrl,
		hub:    hub,
		logDir: logDir,
	}

	e := s.Echo
	e.GET("/healthz", s.handleHealthz)
	e.GET("/api/scenarios", s.handleScenarios)
	e.POST("/api/call/start", s.handleStart)
	e.POST("/api/call/end", s.handleEnd)
	e.POST("/api/call/speak", s.handleSpeak)
	e.GET("/api/call/summary", s.handleSummary)
	e.GET("/api/logs", s.handleLogs)
	e.GET("/ws", s.handleWS)

	return s
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleScenarios(c echo.Context) error {
	out := make([]scenarioInfo, 0, len(scenario.All()))
	for _, sc := range scenario.All() {
		tpl := scenario.TemplateFor(sc)
		out = append(out, scenarioInfo{ID: string(sc), Title: tpl.Title, Persona: tpl.PersonaName})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleStart(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if !scenario.Valid(req.Scenario) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown scenario: " + req.Scenario})
	}

	sc := scenario.Parse(req.Scenario)
	id, err := s.ctrl.Start(sc)
	if err != nil {
		if errors.Is(err, controller.ErrCallInProgress) {
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, startResponse{
		SessionID: id,
		Scenario:  string(sc),
		State:     string(controller.StateRunning),
	})
}

func (s *Server) handleEnd(c echo.Context) error {
	summary, err := s.ctrl.End()
	if err != nil {
		if errors.Is(err, controller.ErrNoActiveCall) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		// the call still ended; surface the persistence failure
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSpeak(c echo.Context) error {
	if err := s.ctrl.ManualSpeak(); err != nil {
		switch {
		case errors.Is(err, controller.ErrNoActiveCall):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.Is(err, controller.ErrListening):
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleSummary(c echo.Context) error {
	summary := s.ctrl.Summary()
	if summary == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no finished call yet"})
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleLogs(c echo.Context) error {
	paths, err := calllog.List(s.logDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, paths)
}

func (s *Server) handleWS(c echo.Context) error {
	s.hub.ServeHTTP(c.Response(), c.Request())
	return nil
}
