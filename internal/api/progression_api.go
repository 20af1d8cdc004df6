package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// ─── Progression API (/api/progression/*) ───────────────────────────────────

// headerPersisted is set to "false" when a mutation succeeded in memory but
// the snapshot write failed. The write is retried on the next mutation.
const headerPersisted = "X-Snapsolve-Persisted"

type solveRequest struct {
	Subject string `json:"subject" validate:"max=64"`
}

type entitlementRequest struct {
	Premium *bool  `json:"premium" validate:"required"`
	Source  string `json:"source" validate:"max=64"`
}

type creditsRequest struct {
	Amount    int    `json:"amount" validate:"required,min=1,max=1000"`
	ProductID string `json:"product_id" validate:"max=128"`
	Source    string `json:"source" validate:"max=64"`
}

type resetRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

// --- POST /solves ---

func (s *Server) handleRecordSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if !s.decode(w, r, &req, true) {
		return
	}

	result, err := s.progression.RecordSolve(req.Subject)
	if !s.handleMutationError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- GET /status ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.progression.Status())
}

// --- GET /achievements ---

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": s.progression.Achievements(),
	})
}

// --- GET /achievements/{id}/progress ---

func (s *Server) handlePreviewProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.progression.PreviewProgress(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrAchievementNotFound) {
		writeError(w, http.StatusNotFound, "achievement_not_found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- POST /achievements/ack ---

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := s.progression.AcknowledgeUnlock()
	if !s.handleMutationError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"acknowledged": id})
}

// --- GET /cosmetics ---

func (s *Server) handleCosmetics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"level":     s.progression.Level(),
		"cosmetics": s.progression.Cosmetics(),
	})
}

// --- POST /entitlement ---

func (s *Server) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	var req entitlementRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	status, err := s.purchases.SetPremium(*req.Premium, req.Source)
	if !s.handleMutationError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// --- POST /credits ---

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	var req creditsRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	status, err := s.purchases.GrantCredits(req.Amount, req.ProductID, req.Source)
	if !s.handleMutationError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// --- GET /purchases ---

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	entries, err := s.purchases.History(queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if entries == nil {
		entries = []domain.PurchaseEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": entries})
}

// --- POST /reset ---

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	err := s.progression.Reset()
	if !s.handleMutationError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, s.progression.Status())
}

// --- GET /reminders ---

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	pending, err := s.reminders.Pending(queryLimit(r, 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if pending == nil {
		pending = []domain.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": pending})
}

// --- POST /reminders/{id}/shown ---

func (s *Server) handleReminderShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid reminder id")
		return
	}
	err = s.reminders.MarkShown(id)
	if errors.Is(err, domain.ErrReminderNotFound) {
		writeError(w, http.StatusNotFound, "reminder_not_found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"shown": true})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// decode parses and validates a JSON body. An empty body is accepted only
// when allowEmpty is set. Writes the error response and returns false on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return false
	}
	if err := s.validator.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "validation error: "+err.Error())
		return false
	}
	return true
}

// handleMutationError maps a facade error onto the response. Returns true
// when the caller should go on to write its success body.
func (s *Server) handleMutationError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrPersistenceWriteFailed):
		// Applied in memory; the client still gets the result.
		s.log.Warn("mutation not persisted", "error", err)
		w.Header().Set(headerPersisted, "false")
		return true
	case errors.Is(err, domain.ErrQuotaExhausted):
		writeError(w, http.StatusTooManyRequests, "quota_exhausted", err.Error())
	case errors.Is(err, domain.ErrInvalidCreditGrant):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
	return false
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > 500 {
		return def
	}
	return n
}
