// Package history filters and aggregates monthly score records for the
// historical dashboard.
package history

import (
	"encoding/json"
	"math"

	"github.com/sells-group/credit-cli/internal/model"
)

// All is the filter wildcard for month and business.
const All = "all"

// Point is one chart point. Records carry BusinessID and Score; monthly
// averages carry AverageScore.
type Point struct {
	Month        string
	BusinessID   string
	Score        int
	AverageScore int
}

// Series is the chart series for a filter selection.
type Series struct {
	// Averaged is true when points are per-month averages across all
	// businesses rather than individual records.
	Averaged bool
	Points   []Point
}

type averagePoint struct {
	Month        string `json:"month" yaml:"month"`
	AverageScore int    `json:"averageScore" yaml:"averageScore"`
}

type recordPoint struct {
	Month      string `json:"month" yaml:"month"`
	BusinessID string `json:"businessId" yaml:"businessId"`
	Score      int    `json:"score" yaml:"score"`
}

// wire returns the points in their encoded shape. The shape depends on
// Averaged so a zero average is still emitted.
func (s Series) wire() any {
	if s.Averaged {
		out := make([]averagePoint, 0, len(s.Points))
		for _, p := range s.Points {
			out = append(out, averagePoint{Month: p.Month, AverageScore: p.AverageScore})
		}
		return out
	}
	out := make([]recordPoint, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, recordPoint{Month: p.Month, BusinessID: p.BusinessID, Score: p.Score})
	}
	return out
}

// MarshalJSON encodes the series as its points so consumers plot it directly.
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// MarshalYAML mirrors MarshalJSON.
func (s Series) MarshalYAML() (any, error) {
	return s.wire(), nil
}

// Filter returns the records matching month and business, either of which may
// be All. Input order is preserved and the input slice is not modified.
func Filter(records []model.ScoreRecord, month, business string) []model.ScoreRecord {
	out := make([]model.ScoreRecord, 0, len(records))
	for _, r := range records {
		if month != All && r.Month != month {
			continue
		}
		if business != All && r.BusinessID != business {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MonthlyAverages returns one point per month in months order holding the
// rounded mean score of that month's records, or 0 when a month has none.
func MonthlyAverages(records []model.ScoreRecord, months []string) []Point {
	type acc struct {
		sum   int
		count int
	}
	byMonth := make(map[string]*acc, len(months))
	for _, r := range records {
		a, ok := byMonth[r.Month]
		if !ok {
			a = &acc{}
			byMonth[r.Month] = a
		}
		a.sum += r.Score
		a.count++
	}

	points := make([]Point, 0, len(months))
	for _, m := range months {
		avg := 0
		if a, ok := byMonth[m]; ok && a.count > 0 {
			avg = roundHalfUp(float64(a.sum) / float64(a.count))
		}
		points = append(points, Point{Month: m, AverageScore: avg})
	}
	return points
}

// Aggregate applies a filter selection. When business is All the series is
// the monthly averages over every record, ignoring the month filter, so the
// trend chart stays complete. Otherwise the series mirrors the filtered rows.
func Aggregate(records []model.ScoreRecord, months []string, month, business string) ([]model.ScoreRecord, Series) {
	filtered := Filter(records, month, business)

	if business == All {
		return filtered, Series{Averaged: true, Points: MonthlyAverages(records, months)}
	}

	points := make([]Point, 0, len(filtered))
	for _, r := range filtered {
		points = append(points, Point{Month: r.Month, BusinessID: r.BusinessID, Score: r.Score})
	}
	return filtered, Series{Points: points}
}

// BusinessIDs returns the distinct business ids in first-seen order.
func BusinessIDs(records []model.ScoreRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var ids []string
	for _, r := range records {
		if _, ok := seen[r.BusinessID]; ok {
			continue
		}
		seen[r.BusinessID] = struct{}{}
		ids = append(ids, r.BusinessID)
	}
	return ids
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
