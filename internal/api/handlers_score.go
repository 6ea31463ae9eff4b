package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/report"
	"github.com/sells-group/credit-cli/internal/scoring"
	"github.com/sells-group/credit-cli/pkg/backend"
)

type scoreResponse struct {
	Score    int                    `json:"score"`
	Risk     scoring.Classification `json:"risk"`
	Advice   scoring.Advice         `json:"advice"`
	Redirect string                 `json:"redirect,omitempty"`
}

func (s *Server) scoreResponse(score int, redirect bool) scoreResponse {
	resp := scoreResponse{
		Score:  score,
		Risk:   s.policies.Risk.Classify(score),
		Advice: s.policies.Advice.Advise(score),
	}
	if redirect {
		resp.Redirect = s.dashboardURL(score)
	}
	return resp
}

func (s *Server) dashboardURL(score int) string {
	q := url.Values{"score": []string{strconv.Itoa(score)}}
	return s.cfg.DashboardPath + "?" + q.Encode()
}

// handleDashboard serves GET /api/dashboard?score=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views.BuildRaw(r.URL.Query().Get("score")))
}

// handleDashboardReport serves GET /api/dashboard/report.pdf?score=&business=.
// When a business is named its history is included if the backend answers.
func (s *Server) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	view := s.views.BuildRaw(r.URL.Query().Get("score"))
	business := strings.TrimSpace(r.URL.Query().Get("business"))

	opts := report.Options{BusinessID: business, GeneratedAt: s.now(), Locale: s.locale}
	if business != "" && business != history.All && s.backend != nil {
		resp, err := s.backend.History(r.Context())
		if err != nil {
			zap.L().Warn("report: history unavailable, rendering without it", zap.Error(err))
		} else {
			opts.History = history.Rows(history.Filter(resp.Data, history.All, business))
		}
	}

	pdf, err := report.Generate(view, opts)
	if err != nil {
		zap.L().Error("report: generate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="credit-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// handleEstimate serves POST /api/estimate with a BusinessRecord body.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var rec model.BusinessRecord
	if !decodeJSON(w, r, &rec) {
		return
	}
	score := scoring.Estimate(rec)
	resp := s.scoreResponse(score, false)
	if s.metrics != nil {
		s.metrics.ObserveScore("estimate", resp.Risk.Level)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCalculate serves POST /api/calculate, relaying the wire payload to
// the scoring backend.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req backend.CalculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.calculate(w, r, req, "api")
}

func (s *Server) calculate(w http.ResponseWriter, r *http.Request, req backend.CalculateRequest, source string) {
	if s.backend == nil {
		backendFailed(w, r, "calculate", eris.New("api: backend not configured"))
		return
	}
	resp, err := s.backend.Calculate(r.Context(), req)
	if err != nil {
		backendFailed(w, r, "calculate", err)
		return
	}

	score := scoring.Clamp(resp.AICreditScore)
	out := s.scoreResponse(score, true)
	if s.metrics != nil {
		s.metrics.ObserveScore("backend", out.Risk.Level)
	}
	s.recordAssessment(r.Context(), model.Assessment{
		BusinessID: req.BusinessID,
		Month:      req.Month,
		Score:      score,
		RiskLevel:  out.Risk.Level,
		Source:     source,
	})
	writeJSON(w, http.StatusOK, out)
}

// recordAssessment logs the outcome; storage failures never fail the request.
func (s *Server) recordAssessment(ctx context.Context, a model.Assessment) {
	if s.store == nil || a.BusinessID == "" {
		return
	}
	if _, err := s.store.RecordAssessment(ctx, a); err != nil {
		zap.L().Warn("record assessment failed", zap.String("business_id", a.BusinessID), zap.Error(err))
	}
}
