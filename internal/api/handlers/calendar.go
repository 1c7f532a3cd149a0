package handlers

import (
	"net/http"

	"github.com/tsubasarcs/etf-strategy-automation/internal/calendar"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// CalendarHandler serves the resolved ex-dividend calendar.
type CalendarHandler struct {
	chain  *calendar.Chain
	logger *logger.Logger
}

// NewCalendarHandler creates the handler.
func NewCalendarHandler(chain *calendar.Chain, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{chain: chain, logger: log}
}

// GetCalendar returns the current dividend calendar.
// GET /api/calendar
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	resolved := h.chain.Resolve(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"codes":    len(resolved),
		"dates":    resolved.TotalDates(),
		"calendar": resolved,
	})
}
