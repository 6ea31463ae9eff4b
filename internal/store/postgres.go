package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	sqlInsertContact    = `INSERT INTO contact_messages (id, name, email, subject, message, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	sqlGetContact       = `SELECT id, name, email, subject, message, created_at FROM contact_messages WHERE id = $1`
	sqlListContacts     = `SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC LIMIT $1`
	sqlInsertAssessment = `INSERT INTO assessments (id, business_id, month, score, risk_level, source, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	sqlListAssessments  = `SELECT id, business_id, month, score, risk_level, source, created_at FROM assessments`
)

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_contact":    sqlInsertContact,
	"get_contact":       sqlGetContact,
	"list_contacts":     sqlListContacts,
	"insert_assessment": sqlInsertAssessment,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				// Tables may not exist before the first Migrate.
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
					continue
				}
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_id TEXT NOT NULL,
	month       TEXT NOT NULL DEFAULT '',
	score       INTEGER NOT NULL CHECK (score BETWEEN 300 AND 900),
	risk_level  TEXT NOT NULL,
	source      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_business_created ON assessments(business_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveContact(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, sqlInsertContact,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert contact")
	}
	return &msg, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*model.ContactMessage, error) {
	msg, err := scanContact(s.pool.QueryRow(ctx, sqlGetContact, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: contact %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get contact %s", id)
	}
	return msg, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	rows, err := s.pool.Query(ctx, sqlListContacts, clampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var out []model.ContactMessage
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		out = append(out, *msg)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}

func (s *PostgresStore) RecordAssessment(ctx context.Context, a model.Assessment) (*model.Assessment, error) {
	if a.BusinessID == "" {
		return nil, eris.New("postgres: assessment requires business id")
	}
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, sqlInsertAssessment,
		a.ID, a.BusinessID, a.Month, a.Score, a.RiskLevel, a.Source, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert assessment")
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := sqlListAssessments
	var args []any
	if filter.BusinessID != "" {
		args = append(args, filter.BusinessID)
		query += fmt.Sprintf(" WHERE business_id = $%d", len(args))
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		if err := rows.Scan(&a.ID, &a.BusinessID, &a.Month, &a.Score, &a.RiskLevel, &a.Source, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate assessments")
}
