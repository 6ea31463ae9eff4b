package api

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/export"
	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/pkg/backend"
)

type historyResponse struct {
	Months      []string       `json:"months"`
	BusinessIDs []string       `json:"businessIds"`
	Month       string         `json:"month"`
	Business    string         `json:"business"`
	Averaged    bool           `json:"averaged"`
	Records     []history.Row  `json:"records"`
	Series      history.Series `json:"series"`
}

func selection(r *http.Request) (month, business string) {
	month = strings.TrimSpace(r.URL.Query().Get("month"))
	business = strings.TrimSpace(r.URL.Query().Get("business"))
	if month == "" {
		month = history.All
	}
	if business == "" {
		business = history.All
	}
	return month, business
}

func (s *Server) fetchHistory(w http.ResponseWriter, r *http.Request) (*backend.HistoryResponse, bool) {
	if s.backend == nil {
		writeError(w, http.StatusBadGateway, fetchFailed)
		return nil, false
	}
	resp, err := s.backend.History(r.Context())
	if err != nil {
		backendFailed(w, r, "history", err)
		return nil, false
	}
	return resp, true
}

// handleHistory serves GET /api/history?month=&business=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.fetchHistory(w, r)
	if !ok {
		return
	}
	month, business := selection(r)
	filtered, series := history.Aggregate(resp.Data, resp.Months, month, business)

	ids := history.BusinessIDs(resp.Data)
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Months:      resp.Months,
		BusinessIDs: ids,
		Month:       month,
		Business:    business,
		Averaged:    series.Averaged,
		Records:     history.Rows(filtered),
		Series:      series,
	})
}

// handleHistoryXLSX serves the filtered table as a workbook.
func (s *Server) handleHistoryXLSX(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.fetchHistory(w, r)
	if !ok {
		return
	}
	month, business := selection(r)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, history.Rows(history.Filter(resp.Data, month, business))); err != nil {
		zap.L().Error("history: xlsx export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export history")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="credit-history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleHistoryCSV serves the filtered table as CSV.
func (s *Server) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.fetchHistory(w, r)
	if !ok {
		return
	}
	month, business := selection(r)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, history.Rows(history.Filter(resp.Data, month, business))); err != nil {
		zap.L().Error("history: csv export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export history")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="credit-history.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
