package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/swipefolio/stockpipe/internal/cache"
	"github.com/swipefolio/stockpipe/internal/database"
	"github.com/swipefolio/stockpipe/internal/pipeline"
)

// Handler holds dependencies for the read-only HTTP handlers. The mobile app
// consumes these endpoints; all writes go through the pipeline commands.
type Handler struct {
	db      *database.DB
	lbCache *cache.LeaderboardCache // nil disables caching
	topN    int
	minData int
	window  func() pipeline.Window
	logger  *slog.Logger
}

// NewHandler creates a new Handler. window supplies the current analysis
// window (normally pipeline.YTDWindow at request time).
func NewHandler(db *database.DB, lbCache *cache.LeaderboardCache, topN, minData int, window func() pipeline.Window, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:      db,
		lbCache: lbCache,
		topN:    topN,
		minData: minData,
		window:  window,
		logger:  logger,
	}
}

// GetAllStocks handles GET /api/v1/stocks
func (h *Handler) GetAllStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.db.GetAllStocks()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stocks)
}

// GetStock handles GET /api/v1/stocks/{ticker}
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticker := vars["ticker"]

	stock, err := h.db.GetStockByTicker(ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, stock)
}

// GetStockPrices handles GET /api/v1/stocks/{ticker}/prices
func (h *Handler) GetStockPrices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticker := vars["ticker"]

	stock, err := h.db.GetStockByTicker(ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	win := h.window()
	series, err := h.db.GetPriceSeries(stock.ID, win.Start, win.End)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// GetMetrics handles GET /api/v1/stocks/{ticker}/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticker := vars["ticker"]

	stock, err := h.db.GetStockByTicker(ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	metrics, err := h.db.GetMetrics(stock.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetLeaderboard handles GET /api/v1/leaderboard. Served from the Redis
// cache when warm; on a miss the leaderboard is rebuilt from the metrics
// snapshot and cached.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.lbCache != nil {
		lb, err := h.lbCache.Get(ctx)
		if err == nil {
			respondJSON(w, http.StatusOK, lb)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("leaderboard cache read failed", "error", err)
		}
	}

	win := h.window()
	rows, err := h.db.GetLeaderboardRows(win.Start)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries := make([]pipeline.ComputedEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, pipeline.ComputedEntry{
			CompanyID:    row.Metrics.CompanyID,
			Ticker:       row.Metrics.Ticker,
			YTDReturn:    row.Metrics.YTDReturn,
			CurrentPrice: row.Metrics.CurrentPrice,
			DataPoints:   row.DataPoints,
		})
	}
	lb := pipeline.BuildLeaderboard(entries, h.topN, h.minData, time.Now().UTC())

	if h.lbCache != nil {
		if err := h.lbCache.Set(ctx, lb); err != nil {
			h.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, lb)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing left to do but log.
		slog.Default().Error("failed to encode response", "error", err)
	}
}
