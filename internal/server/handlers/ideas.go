package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "trendmine/internal/common/errors"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

const warningGenerateFailed = "Failed to generate ideas"

// Generator is the idea pipeline the handler serves.
type Generator interface {
	Generate(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error)
}

type IdeasHandler struct {
	generator Generator
	logger    logger.Logger
}

func NewIdeasHandler(generator Generator, log logger.Logger) *IdeasHandler {
	return &IdeasHandler{
		generator: generator,
		logger:    log.With(map[string]interface{}{"handler": "ideas"}),
	}
}

type generateRequest struct {
	Signals []signals.TrendSignal `json:"signals"`
}

type generateFailure struct {
	Error       string               `json:"error"`
	Ideas       []ideas.BusinessIdea `json:"ideas"`
	Warnings    []string             `json:"warnings"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// Generate handles POST /api/v1/ideas/generate.
func (h *IdeasHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid generate request", map[string]interface{}{"error": err})
		h.fail(w, apperrors.NewRequestInvalidError(err))
		return
	}

	in := make([]signals.TrendSignal, 0, len(req.Signals))
	for _, s := range req.Signals {
		if strings.TrimSpace(s.Text) != "" {
			in = append(in, s)
		}
	}

	result, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		h.fail(w, apperrors.AsStandard(err))
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *IdeasHandler) fail(w http.ResponseWriter, err *apperrors.StandardError) {
	status := apperrors.HTTPStatus(err.Code)
	if status != http.StatusInternalServerError {
		respondWithError(w, status, err.Message)
		return
	}

	respondWithJSON(w, status, generateFailure{
		Error:       err.Message,
		Ideas:       []ideas.BusinessIdea{},
		Warnings:    []string{warningGenerateFailed},
		GeneratedAt: time.Now().UTC(),
	})
}
