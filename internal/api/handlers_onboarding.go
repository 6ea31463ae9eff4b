package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/onboarding"
	"github.com/sells-group/credit-cli/internal/scoring"
)

type sessionResponse struct {
	ID       string           `json:"id"`
	State    onboarding.State `json:"state"`
	Step     onboarding.Step  `json:"currentStep"`
	Progress float64          `json:"progress"`
	Estimate int              `json:"estimate"`
}

func (s *Server) sessionResponse(id string, st onboarding.State) sessionResponse {
	return sessionResponse{
		ID:       id,
		State:    st,
		Step:     st.CurrentStep(),
		Progress: st.Progress(),
		Estimate: scoring.Estimate(st.Record()),
	}
}

func (s *Server) trackSessions() {
	if s.metrics != nil {
		s.metrics.OnboardingSessions.Set(float64(s.sessions.Len()))
	}
}

func (s *Server) handleOnboardingSteps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, onboarding.Steps())
}

// handleOnboardingCreate serves POST /api/onboarding.
func (s *Server) handleOnboardingCreate(w http.ResponseWriter, _ *http.Request) {
	id, st := s.sessions.Create()
	s.trackSessions()
	writeJSON(w, http.StatusCreated, s.sessionResponse(id, st))
}

// handleOnboardingGet serves GET /api/onboarding/{id}.
func (s *Server) handleOnboardingGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(id, st))
}

// handleOnboardingActions serves POST /api/onboarding/{id}/actions with a
// single action or {"actions": [...]}.
func (s *Server) handleOnboardingActions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		onboarding.Action
		Actions []onboarding.Action `json:"actions"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	actions := body.Actions
	if body.Type != "" {
		actions = append([]onboarding.Action{body.Action}, actions...)
	}
	if len(actions) == 0 {
		writeError(w, http.StatusBadRequest, "no actions")
		return
	}
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Apply(id, actions...)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(id, st))
}

// handleOnboardingSubmit serves POST /api/onboarding/{id}/submit. The session
// must be on the last step; it is marked submitted only if the backend
// returns a score.
func (s *Server) handleOnboardingSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Month string `json:"month"`
	}
	if !decodeOptionalJSON(w, r, &body) {
		return
	}
	month := strings.TrimSpace(body.Month)
	if month == "" {
		month = s.now().Format("Jan")
	}

	id := chi.URLParam(r, "id")
	st, err := s.sessions.BeginSubmit(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	rec := &statusRecorder{ResponseWriter: w}
	s.calculate(rec, r, st.Request(month), "api")
	if rec.status != http.StatusOK {
		s.sessions.AbortSubmit(id)
		return
	}
	if _, err := s.sessions.CompleteSubmit(id); err != nil {
		zap.L().Error("onboarding: complete submit failed", zap.String("session", id), zap.Error(err))
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboarding.ErrUnknownSession):
		writeError(w, http.StatusNotFound, "unknown session")
	case errors.Is(err, onboarding.ErrSubmitted):
		writeError(w, http.StatusConflict, "session already submitted")
	case errors.Is(err, onboarding.ErrSubmitPending):
		writeError(w, http.StatusConflict, "submit in progress")
	case errors.Is(err, onboarding.ErrNotLastStep):
		writeError(w, http.StatusConflict, "onboarding is not on the last step")
	case errors.Is(err, onboarding.ErrSubmitRequired):
		writeError(w, http.StatusConflict, "use submit on the last step")
	default:
		writeError(w, http.StatusInternalServerError, "session error")
	}
}

// statusRecorder remembers the status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
