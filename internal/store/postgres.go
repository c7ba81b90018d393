package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/legalvoice/api/internal/model"
	"github.com/lib/pq"
)

const caseColumns = `id, user_name, email, phone, category, language, method, status,
	audio_key, audio_file_url, transcription, confidence, detected_language,
	generated_document, document_url, failure_reason, processing_steps,
	stage, active_stage, claimed_at, created_at, updated_at`

const createTableSQL = `
CREATE TABLE IF NOT EXISTS legal_cases (
	id                 TEXT PRIMARY KEY,
	user_name          TEXT NOT NULL,
	email              TEXT NOT NULL,
	phone              TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL,
	language           TEXT NOT NULL,
	method             TEXT NOT NULL,
	status             TEXT NOT NULL,
	audio_key          TEXT NOT NULL DEFAULT '',
	audio_file_url     TEXT NOT NULL DEFAULT '',
	transcription      TEXT NOT NULL DEFAULT '',
	confidence         DOUBLE PRECISION,
	detected_language  TEXT NOT NULL DEFAULT '',
	generated_document TEXT NOT NULL DEFAULT '',
	document_url       TEXT NOT NULL DEFAULT '',
	failure_reason     TEXT NOT NULL DEFAULT '',
	processing_steps   JSONB NOT NULL DEFAULT '[]'::jsonb,
	stage              INTEGER NOT NULL DEFAULT 0,
	active_stage       INTEGER NOT NULL DEFAULT 0,
	claimed_at         TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS legal_cases_created_at_idx ON legal_cases (created_at DESC);`

// PostgresStore keeps cases in the legal_cases table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// OpenPostgres opens a lib/pq connection pool and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the case table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*model.Case, error) {
	var (
		c          model.Case
		confidence sql.NullFloat64
		steps      []byte
		claimedAt  pq.NullTime
	)
	err := row.Scan(
		&c.ID, &c.UserName, &c.Email, &c.Phone, &c.Category, &c.Language, &c.Method, &c.Status,
		&c.AudioKey, &c.AudioFileURL, &c.Transcription, &confidence, &c.DetectedLanguage,
		&c.GeneratedDocument, &c.DocumentURL, &c.FailureReason, &steps,
		&c.Stage, &c.ActiveStage, &claimedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if confidence.Valid {
		v := confidence.Float64
		c.Confidence = &v
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		c.ClaimedAt = &t
	}
	c.ProcessingSteps = []model.ProcessingStep{}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &c.ProcessingSteps); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func caseArgs(c *model.Case) ([]any, error) {
	steps, err := json.Marshal(c.ProcessingSteps)
	if err != nil {
		return nil, err
	}
	var confidence sql.NullFloat64
	if c.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *c.Confidence, Valid: true}
	}
	var claimedAt pq.NullTime
	if c.ClaimedAt != nil {
		claimedAt = pq.NullTime{Time: *c.ClaimedAt, Valid: true}
	}
	return []any{
		c.ID, c.UserName, c.Email, c.Phone, string(c.Category), string(c.Language), string(c.Method), string(c.Status),
		c.AudioKey, c.AudioFileURL, c.Transcription, confidence, c.DetectedLanguage,
		c.GeneratedDocument, c.DocumentURL, c.FailureReason, steps,
		int(c.Stage), int(c.ActiveStage), claimedAt, c.CreatedAt, c.UpdatedAt,
	}, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *model.Case) (string, error) {
	rec := prepare(c, s.now())
	args, err := caseArgs(rec)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO legal_cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		args...)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM legal_cases WHERE id = $1`, id)
	return scanCase(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*model.Case, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+caseColumns+` FROM legal_cases ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (s *PostgresStore) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Case, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM legal_cases WHERE id = $1 FOR UPDATE`, id)
	working, err := scanCase(row)
	if err != nil {
		return nil, err
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = s.now()

	args, err := caseArgs(working)
	if err != nil {
		return nil, err
	}
	// id stays $1; the remaining columns are rewritten in order
	_, err = tx.ExecContext(ctx, `UPDATE legal_cases SET
		user_name = $2, email = $3, phone = $4, category = $5, language = $6, method = $7, status = $8,
		audio_key = $9, audio_file_url = $10, transcription = $11, confidence = $12, detected_language = $13,
		generated_document = $14, document_url = $15, failure_reason = $16, processing_steps = $17,
		stage = $18, active_stage = $19, claimed_at = $20, created_at = $21, updated_at = $22
		WHERE id = $1`, args...)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return working, nil
}
