package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Read-only stock routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stocks", handler.GetAllStocks).Methods("GET")
	api.HandleFunc("/stocks/{ticker}", handler.GetStock).Methods("GET")
	api.HandleFunc("/stocks/{ticker}/prices", handler.GetStockPrices).Methods("GET")
	api.HandleFunc("/stocks/{ticker}/metrics", handler.GetMetrics).Methods("GET")
	api.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods("GET")

	return r
}
