package model

import "time"

// ScoreRecord is one month's score for one business as reported by the
// scoring backend. Scores are in [300, 900].
type ScoreRecord struct {
	ID            string `json:"_id,omitempty" yaml:"id,omitempty"`
	BusinessID    string `json:"businessId" yaml:"businessId"`
	Month         string `json:"month" yaml:"month"`
	Date          string `json:"date" yaml:"date"` // ISO 8601
	Score         int    `json:"score" yaml:"score"`
	PreviousScore int    `json:"previousScore" yaml:"previousScore"`
}

// Assessment records a score returned by the backend for a submitted
// business. Only the outcome is kept, never the submitted record.
type Assessment struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Month      string    `json:"month"`
	Score      int       `json:"score"`
	RiskLevel  string    `json:"risk_level"`
	Source     string    `json:"source"` // "api" or "cli"
	CreatedAt  time.Time `json:"created_at"`
}
