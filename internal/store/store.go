// Package store persists contact messages and the assessment log.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/config"
	"github.com/sells-group/credit-cli/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = eris.New("store: not found")

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// AssessmentFilter specifies criteria for listing assessments.
type AssessmentFilter struct {
	BusinessID string `json:"business_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

func (f AssessmentFilter) limit() int {
	return clampLimit(f.Limit)
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	default:
		return n
	}
}

// Store defines the persistence interface. Submitted business records are
// never stored; only the resulting assessments are.
type Store interface {
	// Contact messages
	SaveContact(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error)
	GetContact(ctx context.Context, id string) (*model.ContactMessage, error)
	ListContacts(ctx context.Context, limit int) ([]model.ContactMessage, error)

	// Assessments
	RecordAssessment(ctx context.Context, a model.Assessment) (*model.Assessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured driver and runs migrations. It returns a
// nil Store when persistence is disabled.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return nil, nil
	case "sqlite":
		st, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns})
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
