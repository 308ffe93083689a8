// Package handlers provides HTTP handlers for the drill, strategy lookups
// and progress.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/selector"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
	"github.com/aristath/rfitrainer/internal/modules/trainer"
)

// SettingsLoader supplies the saved user settings.
type SettingsLoader interface {
	Load() (settings.UserSettings, error)
}

// Handler provides HTTP handlers for trainer endpoints
type Handler struct {
	service  *trainer.Service
	settings SettingsLoader
	log      zerolog.Logger
}

// NewHandler creates a new trainer handler
func NewHandler(service *trainer.Service, settingsLoader SettingsLoader, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		settings: settingsLoader,
		log:      log.With().Str("handler", "trainer").Logger(),
	}
}

// AnswerRequest is the body of POST /api/trainer/answer.
type AnswerRequest struct {
	Position string `json:"position"`
	Hand     string `json:"hand"`
	Action   string `json:"action"`
}

// HandleNext handles GET /api/trainer/next
// Query overrides: positions=RFI_BTN,RFI_CO and mode=random.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pick, err := h.service.SelectNext(r.Context(), session)
	if errors.Is(err, selector.ErrNoCandidates) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to select next hand")
		http.Error(w, "Failed to select next hand", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, pick)
}

func (h *Handler) sessionFor(r *http.Request) (domain.SessionSettings, error) {
	us := settings.DefaultUserSettings()
	if h.settings != nil {
		loaded, err := h.settings.Load()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to load settings, using defaults")
		} else {
			us = loaded
		}
	}

	positions := us.EnabledPositions
	if raw := r.URL.Query().Get("positions"); raw != "" {
		positions = nil
		for _, part := range strings.Split(raw, ",") {
			p, err := domain.ParsePosition(part)
			if err != nil {
				return domain.SessionSettings{}, err
			}
			positions = append(positions, p)
		}
	}

	mode := us.Mode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m, err := domain.ParseMode(raw)
		if err != nil {
			return domain.SessionSettings{}, err
		}
		mode = m
	}

	return domain.NewSessionSettings(positions, mode), nil
}

// HandleAnswer handles POST /api/trainer/answer
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	position, err := domain.ParsePosition(req.Position)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fb, err := h.service.Answer(r.Context(), position, req.Hand, action)
	if errors.Is(err, strategy.ErrNotFound) {
		http.Error(w, "Hand not found in strategy table", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to grade answer")
		http.Error(w, "Failed to record answer", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, fb)
}

// HandleGetStrategy handles GET /api/strategy
func (h *Handler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.service.StrategyInfo())
}

// HandleGetChart handles GET /api/strategy/{position}
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	position, err := domain.ParsePosition(chi.URLParam(r, "position"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	grid, err := h.service.Chart(position)
	if errors.Is(err, strategy.ErrNotFound) {
		http.Error(w, "Position not found in strategy table", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build chart")
		http.Error(w, "Failed to build chart", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"position": position,
		"ranks":    domain.Ranks,
		"grid":     grid,
	})
}

// HandleEvaluate handles GET /api/strategy/{position}/{hand}
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	position, err := domain.ParsePosition(chi.URLParam(r, "position"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hand := chi.URLParam(r, "hand")

	ev, err := h.service.Evaluate(position, hand)
	if errors.Is(err, strategy.ErrNotFound) {
		http.Error(w, "Hand not found in strategy table", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to evaluate hand")
		http.Error(w, "Failed to evaluate hand", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ev)
}

// HandleGetDue handles GET /api/srs/due
func (h *Handler) HandleGetDue(w http.ResponseWriter, r *http.Request) {
	due, err := h.service.DueItems(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load due items")
		http.Error(w, "Failed to load due items", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"count": len(due),
		"items": due,
	})
}

// HandleGetStats handles GET /api/stats
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, stats)
}

// HandleGetHistory handles GET /api/history?limit=N
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load history")
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []attempts.Attempt{}
	}
	h.writeJSON(w, history)
}

// HandleResetProgress handles DELETE /api/progress
func (h *Handler) HandleResetProgress(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reset(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to reset progress")
		http.Error(w, "Failed to reset progress", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
