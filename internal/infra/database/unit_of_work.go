package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/DioGolang/GoPeople/internal/infra/database"

var _ outbound.UnitOfWork = (*Context)(nil)

type pendingChange struct {
	op        string
	table     string
	key       int64
	cancelled bool
	exec      func(ctx context.Context, tx *sql.Tx) (rows int64, finalize func(), err error)
}

type ContextOption func(*Context)

// WithLifetime labels the context's metrics and logs with the lifetime
// policy that created it.
func WithLifetime(name string) ContextOption {
	return func(c *Context) {
		c.lifetime = name
	}
}

// Context is the persistence context: it works on one connection borrowed
// from the store, tracks the entities loaded through it and buffers changes
// until Commit. A connection the driver reports as broken is replaced on the
// next operation. It is not safe for concurrent use.
type Context struct {
	id       string
	lifetime string
	store    *Store
	dialect  Dialect
	conn     *sql.Conn
	log      logger.Logger
	metrics  metrics.Metrics
	tracer   trace.Tracer
	sets     map[string]trackedSet
	pending  []*pendingChange
	disposed atomic.Bool
}

func NewContext(ctx context.Context, store *Store, log logger.Logger, m metrics.Metrics, opts ...ContextOption) (*Context, error) {
	conn, err := store.DB().Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	c := &Context{
		id:       uuid.NewString(),
		lifetime: "transient",
		store:    store,
		dialect:  store.Dialect(),
		conn:     conn,
		metrics:  m,
		tracer:   otel.Tracer(tracerName),
		sets:     make(map[string]trackedSet),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = log.With(logger.String("context_id", c.id), logger.String("lifetime", c.lifetime))

	c.metrics.RecordContextCreated(c.lifetime)
	c.log.Debug(ctx, "persistence context created")
	return c, nil
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) Person() outbound.PersonRepository {
	return NewPersonRepository(c)
}

// Pending reports how many staged changes the next Commit would flush.
func (c *Context) Pending() int {
	n := 0
	for _, ch := range c.pending {
		if !ch.cancelled {
			n++
		}
	}
	return n
}

func (c *Context) Disposed() bool {
	return c.disposed.Load()
}

func (c *Context) checkOpen() error {
	if c.disposed.Load() {
		return outbound.ErrDisposed
	}
	return nil
}

// connection returns the connection the context works on, taking a fresh
// one from the store when the previous one was dropped.
func (c *Context) connection(ctx context.Context) (*sql.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.store.DB().Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	c.conn = conn
	c.log.Info(ctx, "persistence context reconnected")
	return conn, nil
}

// withConn runs fn on the context's connection. If the driver reports the
// connection as broken, it is replaced and fn runs once more. fn must not
// have side effects on the store when it fails that way.
func (c *Context) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	for attempt := 0; ; attempt++ {
		conn, err := c.connection(ctx)
		if err != nil {
			return err
		}
		err = fn(conn)
		if !c.dropBroken(ctx, err) || attempt > 0 {
			return err
		}
	}
}

// dropBroken releases the connection when err says it is unusable, so the
// next operation starts on a new one.
func (c *Context) dropBroken(ctx context.Context, err error) bool {
	if c.conn == nil || !isConnBroken(err) {
		return false
	}
	_ = c.conn.Close()
	c.conn = nil
	c.log.Warn(ctx, "dropping broken connection", logger.WithError(err))
	return true
}

func isConnBroken(err error) bool {
	return errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn)
}

func (c *Context) stage(ctx context.Context, ch *pendingChange) {
	c.pending = append(c.pending, ch)
	c.log.Debug(ctx, "change staged",
		logger.String("op", ch.op),
		logger.String("table", ch.table),
		logger.Int64("key", ch.key),
		logger.Int("pending", len(c.pending)),
	)
}

// Commit flushes every staged change, in staging order, inside one
// transaction. On failure nothing is applied, everything staged or tracked
// is discarded and the context stays usable.
func (c *Context) Commit(ctx context.Context) (int64, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}

	changes := make([]*pendingChange, 0, len(c.pending))
	for _, ch := range c.pending {
		if !ch.cancelled {
			changes = append(changes, ch)
		}
	}
	if len(changes) == 0 {
		c.settle()
		return 0, nil
	}

	ctx, span := c.tracer.Start(ctx, "UnitOfWork.Commit", trace.WithAttributes(
		attribute.String("uow.context_id", c.id),
		attribute.Int("uow.changes", len(changes)),
	))
	defer span.End()

	start := time.Now()
	rows, err := c.flush(ctx, changes)
	c.metrics.RecordCommit(err == nil, rows, time.Since(start))

	if err != nil {
		c.discard()
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		c.log.Error(ctx, "commit failed, staged changes discarded",
			logger.Int("changes", len(changes)),
			logger.WithError(err),
		)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("uow.rows", rows))
	c.log.Info(ctx, "unit of work committed",
		logger.Int("changes", len(changes)),
		logger.Int64("rows", rows),
		logger.Duration("took", time.Since(start)),
	)
	return rows, nil
}

func (c *Context) flush(ctx context.Context, changes []*pendingChange) (int64, error) {
	var tx *sql.Tx
	err := c.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		tx, err = conn.BeginTx(ctx, nil)
		return err
	})
	if err != nil {
		return 0, &outbound.PersistenceError{Op: "begin", Err: err}
	}

	var total int64
	finalizers := make([]func(), 0, len(changes))
	for _, ch := range changes {
		n, finalize, err := ch.exec(ctx, tx)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
			c.dropBroken(ctx, err)
			return 0, &outbound.PersistenceError{Op: ch.op, Table: ch.table, Err: err}
		}
		total += n
		if finalize != nil {
			finalizers = append(finalizers, finalize)
		}
	}

	if err := tx.Commit(); err != nil {
		c.dropBroken(ctx, err)
		return 0, &outbound.PersistenceError{Op: "commit", Err: err}
	}

	for _, finalize := range finalizers {
		finalize()
	}
	c.settle()
	return total, nil
}

// Do runs fn against the repositories of this context and commits what it
// staged. When fn fails the staged changes are discarded and its error is
// returned unchanged.
func (c *Context) Do(ctx context.Context, fn func(provider outbound.RepositoryProvider) error) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := fn(c); err != nil {
		c.discard()
		return err
	}
	_, err := c.Commit(ctx)
	return err
}

func (c *Context) settle() {
	c.pending = nil
	for _, s := range c.sets {
		s.settle()
	}
}

func (c *Context) discard() {
	c.pending = nil
	for _, s := range c.sets {
		s.reset()
	}
}

// Dispose drops anything still staged and releases the connection. Only the
// first call does any work.
func (c *Context) Dispose() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}

	if n := c.Pending(); n > 0 {
		c.log.Warn(context.Background(), "disposing with uncommitted changes", logger.Int("pending", n))
	}
	c.discard()

	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.metrics.RecordContextDisposed(c.lifetime)
	c.log.Debug(context.Background(), "persistence context disposed")

	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("release connection: %w", err)
	}
	return nil
}
