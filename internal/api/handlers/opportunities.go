package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// OpportunityReader retrieves the most recent stored analysis run.
type OpportunityReader interface {
	Latest(ctx context.Context) ([]contracts.Opportunity, error)
}

// Analyzer executes a fresh analysis run.
type Analyzer interface {
	Run(ctx context.Context) ([]contracts.Opportunity, error)
}

// OpportunitiesHandler serves opportunity results. Reader may be nil
// when persistence is disabled; reads then fall through to a live run.
type OpportunitiesHandler struct {
	reader   OpportunityReader
	analyzer Analyzer
	logger   *logger.Logger
}

// NewOpportunitiesHandler creates the handler.
func NewOpportunitiesHandler(reader OpportunityReader, analyzer Analyzer, log *logger.Logger) *OpportunitiesHandler {
	return &OpportunitiesHandler{reader: reader, analyzer: analyzer, logger: log}
}

// GetLatest returns the latest analysis run.
// GET /api/opportunities
func (h *OpportunitiesHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.reader != nil {
		opportunities, err := h.reader.Latest(ctx)
		if err == nil && len(opportunities) > 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"count":         len(opportunities),
				"opportunities": opportunities,
			})
			return
		}
		if err != nil {
			h.logger.WithError(err).Warn("Stored opportunities unavailable, running live")
		}
	}

	h.runAndRespond(w, r)
}

// Analyze triggers a fresh analysis run and returns the results.
// POST /api/analyze
func (h *OpportunitiesHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.runAndRespond(w, r)
}

func (h *OpportunitiesHandler) runAndRespond(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	opportunities, err := h.analyzer.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":         len(opportunities),
		"opportunities": opportunities,
		"elapsed":       time.Since(started).String(),
	})
}
