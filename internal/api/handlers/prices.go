package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

const defaultPriceMonths = 6

// PriceReader reads daily bars for one ETF from a date onward.
type PriceReader interface {
	GetHistory(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error)
}

// PricesHandler serves daily bar history.
type PricesHandler struct {
	prices PriceReader
	logger *logger.Logger
}

// NewPricesHandler creates the handler.
func NewPricesHandler(prices PriceReader, log *logger.Logger) *PricesHandler {
	return &PricesHandler{prices: prices, logger: log}
}

// GetHistory returns daily bars for an ETF.
// GET /api/prices/{code}?months=6
func (h *PricesHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	months := defaultPriceMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			writeError(w, http.StatusBadRequest, "months must be an integer in [1, 24]")
			return
		}
		months = parsed
	}

	from := time.Now().AddDate(0, -months, 0)
	bars, err := h.prices.GetHistory(r.Context(), code, from)
	if err != nil {
		h.logger.WithError(err).WithField("etf_code", code).Error("Price history read failed")
		writeError(w, http.StatusInternalServerError, "price history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":   code,
		"months": months,
		"count":  len(bars),
		"bars":   bars,
	})
}
