package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"swedavia-flights-service/internal/usecase"
	"swedavia-flights-service/pkg/logger"
)

// Handler exposes snapshots, quota and schedule state plus the operator
// actions (boost on/off, key updates) over HTTP
type Handler struct {
	manager  *usecase.PollManager
	ledger   *usecase.QuotaLedger
	boost    *usecase.BoostManager
	rotation *usecase.KeyRotationChecker
	logger   logger.Logger
}

// NewHandler creates a new HTTP API handler
func NewHandler(manager *usecase.PollManager, ledger *usecase.QuotaLedger, boost *usecase.BoostManager, rotation *usecase.KeyRotationChecker, log logger.Logger) *Handler {
	return &Handler{
		manager:  manager,
		ledger:   ledger,
		boost:    boost,
		rotation: rotation,
		logger:   log,
	}
}

// Register wires the API routes onto the mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/flights/{airport}", h.getFlights)
	mux.HandleFunc("GET /api/quota", h.getQuota)
	mux.HandleFunc("GET /api/schedule", h.getSchedule)
	mux.HandleFunc("GET /api/boosts", h.getBoosts)
	mux.HandleFunc("GET /api/keys/rotation", h.getKeyRotation)
	mux.HandleFunc("POST /api/boost/enable", h.enableBoost)
	mux.HandleFunc("POST /api/boost/disable", h.disableBoost)
	mux.HandleFunc("POST /api/keys", h.updateKeys)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) getFlights(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(r.PathValue("airport"))
	snapshot, ok := h.manager.Snapshot(airport)
	if !ok {
		h.writeError(w, http.StatusNotFound, "no snapshot available for "+airport)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) getQuota(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ledger.Stats())
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.manager.ScheduleInfo())
}

func (h *Handler) getBoosts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.boost.ActiveBoosts(r.Context()))
}

func (h *Handler) getKeyRotation(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.rotation.Info())
}

type boostRequest struct {
	Airport       string `json:"airport"`
	DurationHours int    `json:"duration_hours"`
}

func (h *Handler) enableBoost(w http.ResponseWriter, r *http.Request) {
	var req boostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Airport == "" {
		h.writeError(w, http.StatusBadRequest, "airport is required")
		return
	}
	if req.DurationHours != 0 && (req.DurationHours < 1 || req.DurationHours > 12) {
		h.writeError(w, http.StatusBadRequest, "duration_hours must be between 1 and 12")
		return
	}

	result, err := h.manager.EnableBoost(r.Context(), strings.ToUpper(req.Airport), req.DurationHours)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) disableBoost(w http.ResponseWriter, r *http.Request) {
	var req boostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Airport == "" {
		h.writeError(w, http.StatusBadRequest, "airport is required")
		return
	}

	wasActive, err := h.manager.DisableBoost(r.Context(), strings.ToUpper(req.Airport))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"was_active": wasActive})
}

type updateKeysRequest struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (h *Handler) updateKeys(w http.ResponseWriter, r *http.Request) {
	var req updateKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.manager.UpdateKeys(r.Context(), req.Primary, req.Secondary); err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
