// Package handler exposes the recommendation engine over a small JSON HTTP
// surface. It also performs the between-turn session mutation the engine
// itself never does.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/recommend"
	"github.com/FACorreiaa/loci-recommend-engine/internal/session"
	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const interestDelta = 0.1

// RecommendHandler serves the engine endpoints.
type RecommendHandler struct {
	service  recommend.Service
	sessions *session.Store
	logger   *slog.Logger
}

// NewRecommendHandler creates the HTTP handler.
func NewRecommendHandler(service recommend.Service, sessions *session.Store, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{service: service, sessions: sessions, logger: logger}
}

// Recommend handles POST /v1/recommendations.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req types.RecommendRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.SessionID == uuid.Nil {
		req.SessionID = uuid.New()
	}

	result, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "recommendation request failed",
			slog.String("session_id", req.SessionID.String()), slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	h.recordTurn(req.SessionID, result)
	h.writeJSON(w, http.StatusOK, recommendResponse{SessionID: req.SessionID, Result: result})
}

// RefreshMarkers handles POST /v1/markers/refresh.
func (h *RecommendHandler) RefreshMarkers(w http.ResponseWriter, r *http.Request) {
	var req types.RefreshRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.service.RefreshMarkers(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "marker refresh failed",
			slog.String("session_id", req.SessionID.String()), slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "marker refresh failed")
		return
	}

	if req.Focus != nil {
		h.sessions.SetGeoFocus(req.SessionID, *req.Focus)
	}
	h.writeJSON(w, http.StatusOK, recommendResponse{SessionID: req.SessionID, Result: result})
}

// recordTurn applies the between-turn session updates: shown POIs and a
// small interest bump per surfaced category.
func (h *RecommendHandler) recordTurn(sessionID uuid.UUID, result *types.SelectionResult) {
	ids := make([]uuid.UUID, 0, len(result.Markers))
	seenCategories := make(map[types.Category]bool)
	for _, marker := range result.Markers {
		ids = append(ids, marker.POI.ID)
		if !seenCategories[marker.POI.Category] {
			seenCategories[marker.POI.Category] = true
			h.sessions.RecordInterest(sessionID, marker.POI.Category, interestDelta)
		}
	}
	h.sessions.RecordShownPOIs(sessionID, ids)
	if result.Viewport != nil {
		h.sessions.SetGeoFocus(sessionID, result.Viewport.Center)
	}
}

type recommendResponse struct {
	SessionID uuid.UUID              `json:"session_id"`
	Result    *types.SelectionResult `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// trailing garbage is also a bad request
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func (h *RecommendHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *RecommendHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
