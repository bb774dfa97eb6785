package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	id "kycreview/pkg/domain"
	audit "kycreview/pkg/platform/audit"
	txcontext "kycreview/pkg/platform/tx"
	"kycreview/pkg/requestcontext"
)

// Store implements audit.Store on the change_log table. Appends join the
// caller's transaction when one is present in the context.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL change log store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const entryColumns = 13

// Append writes all entries in a single multi-row insert.
func (s *Store) Append(ctx context.Context, entries ...audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO change_log (
		id, submission_id, action, field, old_value, new_value, comment,
		actor_type, actor_id, created_at, request_id, client_ip, user_agent
	) VALUES `)
	args := make([]any, 0, len(entries)*entryColumns)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := range entryColumns {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*entryColumns+j+1)
		}
		sb.WriteString(")")
		args = append(args,
			uuid.UUID(e.ID),
			uuid.UUID(e.SubmissionID),
			string(e.Action),
			e.Field,
			e.OldValue,
			e.NewValue,
			e.Comment,
			string(e.ActorType),
			e.ActorID,
			e.Timestamp,
			e.RequestID,
			e.ClientIP,
			e.UserAgent,
		)
	}

	if _, err := s.execer(ctx).ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert change log entries: %w", err)
	}
	return nil
}

// ListBySubmission returns entries newest first.
func (s *Store) ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]audit.Entry, error) {
	query := `
		SELECT id, seq, submission_id, action, field, old_value, new_value, comment,
			   actor_type, actor_id, created_at, request_id, client_ip, user_agent
		FROM change_log
		WHERE submission_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var (
			e         audit.Entry
			entryID   uuid.UUID
			subID     uuid.UUID
			action    string
			actorType string
		)
		if err := rows.Scan(
			&entryID, &e.Seq, &subID, &action, &e.Field, &e.OldValue, &e.NewValue, &e.Comment,
			&actorType, &e.ActorID, &e.Timestamp, &e.RequestID, &e.ClientIP, &e.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan change log entry: %w", err)
		}
		e.ID = id.EntryID(entryID)
		e.SubmissionID = id.SubmissionID(subID)
		e.Action = audit.Action(action)
		e.ActorType = requestcontext.ActorType(actorType)
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return out, nil
}
