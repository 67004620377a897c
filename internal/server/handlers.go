package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
	"github.com/roach88/ghgdash/internal/forecast"
	"github.com/roach88/ghgdash/internal/table"
)

// updateRequest is the callback body: the control that changed and its
// new value.
type updateRequest struct {
	Control string              `json:"control" binding:"required"`
	Value   dashboard.Selection `json:"value"`
}

func (s *Server) handlePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.page)
}

// handleUpdate answers every handled outcome with 200 so the panel can
// show its own error state. Only requests that name no bound control are
// rejected at the HTTP level.
func (s *Server) handleUpdate(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := s.dispatcher.Dispatch(c.Request.Context(), req.Control, req.Value)
	if res.Case == dispatch.CaseUnknownControl {
		c.JSON(http.StatusNotFound, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

type tableHealth struct {
	Countries int `json:"countries"`
	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`
}

func (s *Server) handleHealth(c *gin.Context) {
	tables := make(map[string]tableHealth)
	for _, name := range s.app.Tables.Names() {
		t := s.app.Tables.MustTable(name)
		tables[name] = tableHealth{
			Countries: len(t.Countries()),
			FirstYear: t.FirstYear(),
			LastYear:  t.LastYear(),
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"tables":   tables,
		"controls": s.dispatcher.Registry().Controls(),
	})
}

func (s *Server) handleForecast(c *gin.Context) {
	fc, err := dashboard.ForecastCO2(s.app, c.Param("country"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"forecast":  fc,
			"predicted": fc.PredictedTrace(s.app.Settings),
		})
	case errors.Is(err, table.ErrUnknownCountry):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, forecast.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
