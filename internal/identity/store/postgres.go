package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"kycreview/internal/identity/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/sentinel"
	txcontext "kycreview/pkg/platform/tx"
)

// PostgresStore persists identities and policy links. All methods join the
// transaction carried by ctx, if any.
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

const identityColumns = `identity_key, first_name, last_name, dob, contact, kyc_status, credential_hash, created_at, updated_at`

func scanIdentity(row interface{ Scan(dest ...any) error }) (*models.Identity, error) {
	var (
		ident  models.Identity
		key    string
		status string
	)
	if err := row.Scan(&key, &ident.FirstName, &ident.LastName, &ident.DOB, &ident.Contact,
		&status, &ident.CredentialHash, &ident.CreatedAt, &ident.UpdatedAt); err != nil {
		return nil, err
	}
	ident.Key = id.IdentityKey(key)
	ident.KycStatus = models.KycStatus(status)
	ident.DOB = ident.DOB.UTC()
	return &ident, nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key id.IdentityKey) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE identity_key = $1`
	ident, err := scanIdentity(s.execer(ctx).QueryRowContext(ctx, query, string(key)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity %s: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return ident, nil
}

func (s *PostgresStore) FindByPolicy(ctx context.Context, policyNo id.PolicyNumber) (*models.Identity, error) {
	query := `
		SELECT i.identity_key, i.first_name, i.last_name, i.dob, i.contact, i.kyc_status,
			   i.credential_hash, i.created_at, i.updated_at
		FROM policy_links l
		JOIN identities i ON i.identity_key = l.identity_key
		WHERE l.policy_no = $1
	`
	ident, err := scanIdentity(s.execer(ctx).QueryRowContext(ctx, query, string(policyNo)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", policyNo, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find identity by policy: %w", err)
	}
	return ident, nil
}

// FindLinkedKey returns the identity of the first policy in policyNos that
// is already linked.
func (s *PostgresStore) FindLinkedKey(ctx context.Context, policyNos []id.PolicyNumber) (id.IdentityKey, error) {
	if len(policyNos) == 0 {
		return "", fmt.Errorf("no linked policy: %w", sentinel.ErrNotFound)
	}
	raw := make([]string, len(policyNos))
	for i, pn := range policyNos {
		raw[i] = string(pn)
	}

	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT policy_no, identity_key FROM policy_links WHERE policy_no = ANY($1) FOR UPDATE`,
		pq.Array(raw))
	if err != nil {
		return "", fmt.Errorf("query policy links: %w", err)
	}
	defer rows.Close()

	linked := make(map[id.PolicyNumber]id.IdentityKey)
	for rows.Next() {
		var pn, key string
		if err := rows.Scan(&pn, &key); err != nil {
			return "", fmt.Errorf("scan policy link: %w", err)
		}
		linked[id.PolicyNumber(pn)] = id.IdentityKey(key)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate policy links: %w", err)
	}
	for _, pn := range policyNos {
		if key, ok := linked[pn]; ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("no linked policy: %w", sentinel.ErrNotFound)
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, ident *models.Identity) (*models.Identity, bool, error) {
	query := `
		INSERT INTO identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (identity_key) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(ident.Key), ident.FirstName, ident.LastName, ident.DOB, ident.Contact,
		string(ident.KycStatus), ident.CredentialHash, ident.CreatedAt, ident.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert identity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert identity: %w", err)
	}
	stored, err := s.FindByKey(ctx, ident.Key)
	if err != nil {
		return nil, false, err
	}
	return stored, n == 1, nil
}

func (s *PostgresStore) SetCredentialIfEmpty(ctx context.Context, key id.IdentityKey, hash string, now time.Time) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE identities SET credential_hash = $2, updated_at = $3
		WHERE identity_key = $1 AND credential_hash = ''
	`, string(key), hash, now)
	if err != nil {
		return false, fmt.Errorf("set credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set credential: %w", err)
	}
	return n == 1, nil
}

// UpsertLinks writes every link; an already linked policy is repointed and
// takes the newer created_at.
func (s *PostgresStore) UpsertLinks(ctx context.Context, links []models.PolicyLink) error {
	if len(links) == 0 {
		return nil
	}
	var (
		policies = make([]string, len(links))
		keys     = make([]string, len(links))
		codes    = make([]string, len(links))
		names    = make([]string, len(links))
		created  = make([]time.Time, len(links))
	)
	for i, l := range links {
		policies[i] = string(l.PolicyNo)
		keys[i] = string(l.IdentityKey)
		codes[i] = l.BranchCode
		names[i] = l.BranchName
		created[i] = l.CreatedAt
	}
	query := `
		INSERT INTO policy_links (policy_no, identity_key, branch_code, branch_name, created_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::timestamptz[])
		ON CONFLICT (policy_no) DO UPDATE
		SET identity_key = EXCLUDED.identity_key,
			branch_code = COALESCE(NULLIF(EXCLUDED.branch_code, ''), policy_links.branch_code),
			branch_name = COALESCE(NULLIF(EXCLUDED.branch_name, ''), policy_links.branch_name),
			created_at = EXCLUDED.created_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		pq.Array(policies), pq.Array(keys), pq.Array(codes), pq.Array(names), pq.Array(timestamps(created)))
	if err != nil {
		return fmt.Errorf("upsert policy links: %w", err)
	}
	return nil
}

func timestamps(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (s *PostgresStore) ListPolicies(ctx context.Context, key id.IdentityKey) ([]models.PolicyLink, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT policy_no, identity_key, branch_code, branch_name, created_at
		FROM policy_links WHERE identity_key = $1 ORDER BY policy_no
	`, string(key))
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var out []models.PolicyLink
	for rows.Next() {
		var l models.PolicyLink
		var pn, k string
		if err := rows.Scan(&pn, &k, &l.BranchCode, &l.BranchName, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan policy link: %w", err)
		}
		l.PolicyNo = id.PolicyNumber(pn)
		l.IdentityKey = id.IdentityKey(k)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, key id.IdentityKey, status models.KycStatus, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE identities SET kyc_status = $2, updated_at = $3 WHERE identity_key = $1`,
		string(key), string(status), now)
	if err != nil {
		return fmt.Errorf("update identity status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("identity %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}
