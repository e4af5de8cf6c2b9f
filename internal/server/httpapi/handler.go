package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/healthlogs"
	"github.com/healthboard/healthboard/internal/server/reminders"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Scope string `json:"scope"`
}

type mfaSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

type logRequest struct {
	LogType string `json:"log_type"`
	Value   string `json:"value"`
	Notes   string `json:"notes"`
}

type logResponse struct {
	ID       string    `json:"id"`
	LogType  string    `json:"log_type"`
	Value    string    `json:"value"`
	Notes    string    `json:"notes"`
	LoggedAt time.Time `json:"logged_at"`
}

type reminderRequest struct {
	Title            string `json:"title"`
	FrequencyMinutes int    `json:"frequency_minutes"`
}

type reminderResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	FrequencyMinutes int        `json:"frequency_minutes"`
	LastSentAt       *time.Time `json:"last_sent_at,omitempty"`
	NextRunAt        time.Time  `json:"next_run_at"`
	IsActive         bool       `json:"is_active"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps the error taxonomy onto fixed, detail-free HTTP
// responses. Unexpected errors are logged with full detail and surfaced as a
// generic failure.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "Invalid request.")
	case errors.Is(err, common.ErrDuplicateIdentity):
		writeError(w, http.StatusBadRequest, "Email already exists.")
	case errors.Is(err, common.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidSecondFactor):
		writeError(w, http.StatusUnauthorized, "Invalid MFA code.")
	case errors.Is(err, common.ErrMFANotConfigured):
		writeError(w, http.StatusBadRequest, "MFA not set up.")
	case errors.Is(err, common.ErrInsufficientScope):
		writeError(w, http.StatusForbidden, "Invalid scope for this operation.")
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
	case errors.Is(err, common.ErrNotFoundOrDenied), errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found or access denied.")
	case errors.Is(err, common.ErrPoolExhausted):
		writeError(w, http.StatusServiceUnavailable, "Server busy. Try again.")
	default:
		s.log.Error(r.Context(), "unexpected error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now()})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: res.Token, Scope: string(res.Scope)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: res.Token, Scope: string(res.Scope)})
}

func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	setup, err := s.users.BeginMFASetup(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mfaSetupResponse{
		Secret:          setup.Secret,
		ProvisioningURI: setup.ProvisioningURI,
	})
}

func (s *Server) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	res, err := s.users.VerifyMFA(r.Context(), req.Code)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: res.Token, Scope: string(res.Scope)})
}

func toLogResponse(log *healthlogs.Log) logResponse {
	return logResponse{
		ID:       log.ID,
		LogType:  log.LogType,
		Value:    log.Value,
		Notes:    log.Notes,
		LoggedAt: log.LoggedAt,
	}
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LogType == "" {
		writeError(w, http.StatusBadRequest, "log_type is required")
		return
	}

	log, err := s.logs.Create(r.Context(), req.LogType, req.Value, req.Notes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLogResponse(log))
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.logs.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]logResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, toLogResponse(log))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// a non-UUID id cannot name any row; same response as a foreign row
	if _, err := uuid.Parse(id); err != nil {
		s.writeServiceError(w, r, common.ErrNotFoundOrDenied)
		return
	}

	if err := s.logs.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted"})
}

func toReminderResponse(rem *reminders.Reminder) reminderResponse {
	return reminderResponse{
		ID:               rem.ID,
		Title:            rem.Title,
		FrequencyMinutes: rem.FrequencyMinutes,
		LastSentAt:       rem.LastSentAt,
		NextRunAt:        rem.NextRunAt,
		IsActive:         rem.IsActive,
	}
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.FrequencyMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "title and positive frequency_minutes are required")
		return
	}

	rem, err := s.reminders.Create(r.Context(), req.Title, req.FrequencyMinutes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(rem))
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	rems, err := s.reminders.ListActive(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]reminderResponse, 0, len(rems))
	for _, rem := range rems {
		out = append(out, toReminderResponse(rem))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFitnessAuthURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": s.fitness.AuthURL()})
}

func (s *Server) handleFitnessSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	res, err := s.fitness.Sync(r.Context(), req.Code)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
