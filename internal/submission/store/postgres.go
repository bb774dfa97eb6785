package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kycreview/internal/submission/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
	txcontext "kycreview/pkg/platform/tx"
	"kycreview/pkg/requestcontext"
)

const uniqueViolation = "23505"

// PostgresStore persists submissions in the submissions table. Execute
// locks the row with FOR UPDATE and writes with a version compare-and-set,
// so a concurrent writer surfaces as sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const submissionColumns = `id, identity_key, status, form, raw_backup, is_lock, locked_by, locked_at,
	reviewed_by, review_started_at, version, rejection_comment, submitted_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		sub           models.Submission
		subID         uuid.UUID
		key, status   string
		submittedBy   string
		form, raw     []byte
		lockedAt      sql.NullTime
		reviewStarted sql.NullTime
	)
	if err := row.Scan(&subID, &key, &status, &form, &raw, &sub.IsLock, &sub.LockedBy, &lockedAt,
		&sub.ReviewedBy, &reviewStarted, &sub.Version, &sub.RejectionComment, &submittedBy,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(form, &sub.Form); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	sub.ID = id.SubmissionID(subID)
	sub.IdentityKey = id.IdentityKey(key)
	sub.Status = models.Status(status)
	sub.SubmittedBy = requestcontext.ActorType(submittedBy)
	if len(raw) > 0 {
		sub.RawBackup = json.RawMessage(raw)
	}
	if lockedAt.Valid {
		sub.LockedAt = lockedAt.Time.UTC()
	}
	if reviewStarted.Valid {
		sub.ReviewStartedAt = reviewStarted.Time.UTC()
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func rawArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) error {
	form, err := json.Marshal(sub.Form)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	query := `INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(sub.ID), string(sub.IdentityKey), string(sub.Status), form, rawArg(sub.RawBackup),
		sub.IsLock, sub.LockedBy, nullTime(sub.LockedAt), sub.ReviewedBy, nullTime(sub.ReviewStartedAt),
		sub.Version, sub.RejectionComment, string(sub.SubmittedBy), sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("submission for %s: %w", sub.IdentityKey, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	return s.findOne(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, uuid.UUID(subID))
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, key id.IdentityKey) (*models.Submission, error) {
	return s.findOne(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE identity_key = $1`, string(key))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Submission, error) {
	sub, err := scanSubmission(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

// Execute reads the row for update, applies validate and mutate, and
// writes it back only if the version is still the one read.
func (s *PostgresStore) Execute(ctx context.Context, subID id.SubmissionID, validate ValidateFunc, mutate MutateFunc) (*models.Submission, error) {
	current, err := s.findOne(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, uuid.UUID(subID))
	if err != nil {
		return nil, err
	}
	readVersion := current.Version
	if err := validate(current); err != nil {
		return nil, err
	}
	if !mutate(current) {
		return current, nil
	}

	form, err := json.Marshal(current.Form)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE submissions SET
			status = $3, form = $4, raw_backup = $5, is_lock = $6, locked_by = $7, locked_at = $8,
			reviewed_by = $9, review_started_at = $10, rejection_comment = $11, submitted_by = $12,
			updated_at = $13, version = version + 1
		WHERE id = $1 AND version = $2
	`,
		uuid.UUID(subID), readVersion, string(current.Status), form, rawArg(current.RawBackup),
		current.IsLock, current.LockedBy, nullTime(current.LockedAt), current.ReviewedBy,
		nullTime(current.ReviewStartedAt), current.RejectionComment, string(current.SubmittedBy),
		current.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("submission %s changed since version %d: %w", subID, readVersion, sentinel.ErrConflict)
	}
	current.Version = readVersion + 1
	return current, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*models.Submission, error) {
	filter = filter.Normalized()

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + submissionColumns + ` FROM submissions`)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(` WHERE status = $1`)
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, ` ORDER BY updated_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.execer(ctx).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT status, count(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}
