package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/credit-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	month       TEXT NOT NULL DEFAULT '',
	score       INTEGER NOT NULL,
	risk_level  TEXT NOT NULL,
	source      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at);
CREATE INDEX IF NOT EXISTS idx_assessments_business_id ON assessments(business_id);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveContact(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert contact")
	}
	return &msg, nil
}

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*model.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages WHERE id = ?`, id)
	msg, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: contact %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact %s", id)
	}
	return msg, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC LIMIT ?`,
		clampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ContactMessage
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		out = append(out, *msg)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) RecordAssessment(ctx context.Context, a model.Assessment) (*model.Assessment, error) {
	if a.BusinessID == "" {
		return nil, eris.New("sqlite: assessment requires business id")
	}
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, business_id, month, score, risk_level, source, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.BusinessID, a.Month, a.Score, a.RiskLevel, a.Source, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert assessment")
	}
	return &a, nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := `SELECT id, business_id, month, score, risk_level, source, created_at FROM assessments`
	var args []any
	if filter.BusinessID != "" {
		query += ` WHERE business_id = ?`
		args = append(args, filter.BusinessID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		if err := rows.Scan(&a.ID, &a.BusinessID, &a.Month, &a.Score, &a.RiskLevel, &a.Source, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate assessments")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanContact(row scannable) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	if err := row.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}
