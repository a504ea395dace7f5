// Package handlers implements the dashboard API: recent transactions,
// monthly stats, and the natural-language ask endpoint.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/api/middleware"
	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
	"github.com/dvloznov/expensebot/internal/query"
	"github.com/rs/zerolog"
)

const defaultRecentLimit = 10

// TransactionsHandler serves transaction listings.
type TransactionsHandler struct {
	store ledger.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store ledger.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// Recent handles GET /api/v1/transactions/recent
func (h *TransactionsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRecentLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	transactions, err := h.store.Recent(ctx, int64(limit))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recent transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// StatsHandler serves aggregate figures for the dashboard.
type StatsHandler struct {
	store ledger.Store
	log   zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store ledger.Store, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{store: store, log: log}
}

// statsResponse is the payload for GET /api/v1/stats. Spent sums positive
// amounts (money out), received sums the magnitudes of negative ones.
type statsResponse struct {
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	Count       int                `json:"count"`
	Total       float64            `json:"total"`
	Spent       float64            `json:"spent"`
	Received    float64            `json:"received"`
	Average     float64            `json:"average"`
	PerCategory map[string]float64 `json:"per_category"`
	PerDay      map[string]float64 `json:"per_day"`
}

// Stats handles GET /api/v1/stats. month=0 (or absent) covers the whole year.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()

	year := now.Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		n, err := strconv.Atoi(yearStr)
		if err != nil || n < 1970 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = n
	}

	month := 0
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		n, err := strconv.Atoi(monthStr)
		if err != nil || n < 0 || n > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = n
	}

	records, err := h.store.All(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for stats")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	resp := statsResponse{
		Year:        year,
		Month:       month,
		PerCategory: map[string]float64{},
		PerDay:      map[string]float64{},
	}
	for _, t := range records {
		if t.CreatedAt.Year() != year {
			continue
		}
		if month != 0 && int(t.CreatedAt.Month()) != month {
			continue
		}

		resp.Count++
		resp.Total += t.Amount
		if t.Amount >= 0 {
			resp.Spent += t.Amount
		} else {
			resp.Received += -t.Amount
		}
		resp.PerCategory[t.Category] += t.Amount
		resp.PerDay[t.CreatedAt.Format("2006-01-02")] += t.Amount
	}
	if resp.Count > 0 {
		resp.Average = resp.Total / float64(resp.Count)
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// AskHandler runs natural-language questions through the query pipeline.
type AskHandler struct {
	pipeline *query.Pipeline
	log      zerolog.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(pipeline *query.Pipeline, log zerolog.Logger) *AskHandler {
	return &AskHandler{pipeline: pipeline, log: log}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	answer, agg, err := h.pipeline.Answer(r.Context(), req.Question, civil.DateOf(time.Now()))
	if err != nil {
		h.log.Error().Err(err).Msg("Ask pipeline failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"answer": answer,
		"total":  agg.Total,
	})
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
