package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/store"
)

// handleContact serves POST /api/contact.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	var msg model.ContactMessage
	if !decodeJSON(w, r, &msg) {
		return
	}
	if err := msg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), "contact: "))
		return
	}
	saved, err := s.store.SaveContact(r.Context(), msg)
	if err != nil {
		zap.L().Error("contact: save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": saved.ID, "status": "received"})
}

// handleListAssessments serves GET /api/assessments?business=&limit=.
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	filter := store.AssessmentFilter{BusinessID: strings.TrimSpace(r.URL.Query().Get("business"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	list, err := s.store.ListAssessments(r.Context(), filter)
	if err != nil {
		zap.L().Error("assessments: list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}
	if list == nil {
		list = []model.Assessment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}
