// Package handlers provides HTTP handlers for trainer settings.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/settings"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service      *settings.Service
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new settings handler. eventManager may be nil.
func NewHandler(service *settings.Service, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		eventManager: eventManager,
		log:          log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetUserSettings handles GET /api/settings
func (h *Handler) HandleGetUserSettings(w http.ResponseWriter, r *http.Request) {
	us, err := h.service.Load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load user settings")
		http.Error(w, "Failed to get settings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, us)
}

// HandlePutUserSettings handles PUT /api/settings
func (h *Handler) HandlePutUserSettings(w http.ResponseWriter, r *http.Request) {
	var us settings.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&us); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.service.Save(us)
	if err != nil {
		h.log.Warn().Err(err).Msg("Rejected settings update")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.emitChanged(saved)
	h.writeJSON(w, saved)
}

// HandleTogglePosition handles POST /api/settings/positions/{position}/toggle
func (h *Handler) HandleTogglePosition(w http.ResponseWriter, r *http.Request) {
	position, err := domain.ParsePosition(chi.URLParam(r, "position"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.service.TogglePosition(position)
	if err != nil {
		h.log.Error().Err(err).Str("position", string(position)).Msg("Failed to toggle position")
		http.Error(w, "Failed to toggle position", http.StatusInternalServerError)
		return
	}

	h.emitChanged(saved)
	h.writeJSON(w, saved)
}

// HandleSetMode handles PUT /api/settings/mode/{mode}
func (h *Handler) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.service.SetMode(mode)
	if err != nil {
		h.log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to set mode")
		http.Error(w, "Failed to set mode", http.StatusInternalServerError)
		return
	}

	h.emitChanged(saved)
	h.writeJSON(w, saved)
}

// HandleGetAll handles GET /api/settings/all
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get all settings")
		http.Error(w, "Failed to get settings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, all)
}

// HandleUpdate handles PUT /api/settings/all/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Key is required", http.StatusBadRequest)
		return
	}

	var update settings.SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Set(key, update.Value); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to update setting")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if us, err := h.service.Load(); err == nil {
		h.emitChanged(us)
	}
	h.writeJSON(w, map[string]interface{}{key: update.Value})
}

func (h *Handler) emitChanged(us settings.UserSettings) {
	if h.eventManager == nil {
		return
	}
	positions := make([]string, len(us.EnabledPositions))
	for i, p := range us.EnabledPositions {
		positions[i] = string(p)
	}
	h.eventManager.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
		EnabledPositions: positions,
		Mode:             string(us.Mode),
		QuestionCount:    int(us.QuestionCount),
		Theme:            us.Theme,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
