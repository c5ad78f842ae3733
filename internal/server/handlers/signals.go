package handlers

import (
	"context"
	"net/http"

	apperrors "trendmine/internal/common/errors"
	"trendmine/internal/common/logger"
	"trendmine/internal/signals"
)

const warningFetchFailed = "Failed to fetch trend data"

// Aggregator is the signal pipeline the handler serves.
type Aggregator interface {
	Aggregate(ctx context.Context, params signals.RequestParams) signals.AggregationResult
}

type SignalsHandler struct {
	aggregator Aggregator
	logger     logger.Logger
}

func NewSignalsHandler(aggregator Aggregator, log logger.Logger) *SignalsHandler {
	return &SignalsHandler{
		aggregator: aggregator,
		logger:     log.With(map[string]interface{}{"handler": "signals"}),
	}
}

type aggregateFailure struct {
	Error    string                `json:"error"`
	Signals  []signals.TrendSignal `json:"signals"`
	Warnings []string              `json:"warnings"`
}

// Aggregate handles POST /api/v1/signals/aggregate.
func (h *SignalsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var params signals.RequestParams
	if err := decodeJSON(w, r, &params); err != nil {
		stdErr := apperrors.NewRequestInvalidError(err)
		h.logger.Warn("invalid aggregate request", map[string]interface{}{"error": err})
		respondWithJSON(w, http.StatusInternalServerError, aggregateFailure{
			Error:    stdErr.Message,
			Signals:  []signals.TrendSignal{},
			Warnings: []string{warningFetchFailed},
		})
		return
	}

	result := h.aggregator.Aggregate(r.Context(), params)
	respondWithJSON(w, http.StatusOK, result)
}
