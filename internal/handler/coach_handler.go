package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func listTransactionsHandler(svc *service.Coach, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/transactions")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")
		q := r.URL.Query()
		month := q.Get("month")

		limit := 0
		if v := q.Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				writeError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		transactions, err := svc.ListTransactions(ctx, accountID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if category := q.Get("category"); category != "" {
			transactions = domain.FilterByCategory(transactions, category)
		}
		if limit > 0 && len(transactions) > limit {
			transactions = transactions[:limit]
		}
		if transactions == nil {
			transactions = []domain.Transaction{}
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

func subscriptionsHandler(svc *service.Coach, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/subscriptions")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")

		minConfidence := 0.6
		if v := r.URL.Query().Get("minConfidence"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_error", "minConfidence must be a number")
				return
			}
			minConfidence = parsed
		}

		resp, err := svc.DetectSubscriptions(ctx, accountID, minConfidence)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func insightsHandler(svc *service.Coach, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/insights")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")
		q := r.URL.Query()

		month := q.Get("month")
		if month == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "month is required (YYYY-MM)")
			return
		}

		limit := 6
		if v := q.Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_error", "limit must be an integer")
				return
			}
			limit = parsed
		}

		extras := q.Get("extras")
		if extras == "" {
			extras = "core"
		}

		debug := q.Get("debug") == "true"

		resp, err := svc.GenerateInsights(ctx, accountID, month, limit, extras, debug)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func goalsHandler(svc *service.Coach, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{accountId}/goals")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")

		var req domain.GoalsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
			return
		}

		resp, err := svc.EvaluateGoal(ctx, accountID, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
