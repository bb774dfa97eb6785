package tx

import (
	"context"
	"database/sql"
	"hash/fnv"
	"sync"
	"time"

	dErrors "kycreview/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner runs fn inside a transactional boundary. Stores called with the
// txCtx passed to fn join the transaction.
type Runner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// DefaultTimeout bounds a transaction when the caller set no deadline.
const DefaultTimeout = 5 * time.Second

func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}

// SQLRunner opens a database transaction per call and commits when fn returns nil.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
	opts    *sql.TxOptions
}

// SQLOption configures a SQLRunner.
type SQLOption func(*SQLRunner)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) SQLOption {
	return func(r *SQLRunner) { r.timeout = d }
}

// WithIsolation sets the isolation level of each transaction.
func WithIsolation(level sql.IsolationLevel) SQLOption {
	return func(r *SQLRunner) { r.opts = &sql.TxOptions{Isolation: level} }
}

func NewSQLRunner(db *sql.DB, opts ...SQLOption) *SQLRunner {
	r := &SQLRunner{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	sqlTx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// numShards is the number of lock shards used by ShardedRunner.
const numShards = 64

type shardKey struct{}

// WithShardKey selects the lock shard ShardedRunner uses for this call.
// Operations on the same aggregate must pass the same key.
func WithShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKey{}, key)
}

// ShardedRunner serializes in-memory transactions that share a shard key.
// It provides isolation, not rollback: stores that need all-or-nothing
// semantics in memory stage their writes themselves.
type ShardedRunner struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedRunner() *ShardedRunner {
	return &ShardedRunner{}
}

func (r *ShardedRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	shard := r.selectShard(ctx)
	r.shards[shard].Lock()
	defer r.shards[shard].Unlock()

	if err := cancelled(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

func (r *ShardedRunner) selectShard(ctx context.Context) uint32 {
	key, _ := ctx.Value(shardKey{}).(string)
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % numShards
}
