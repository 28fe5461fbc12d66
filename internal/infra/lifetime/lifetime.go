// Package lifetime decides which instance of a disposable dependency a
// resolution receives: one for the whole process, or one per open scope.
//
// Scopes travel in a context.Context. A scope-wide Manager refuses to resolve
// without one instead of quietly handing out a throwaway instance.
package lifetime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/google/uuid"
)

type Policy int

const (
	ProcessWide Policy = iota
	ScopeWide
)

func (p Policy) String() string {
	switch p {
	case ProcessWide:
		return "singleton"
	case ScopeWide:
		return "scoped"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "singleton", "process", "":
		return ProcessWide, nil
	case "scoped", "scope":
		return ScopeWide, nil
	default:
		return 0, &outbound.ConfigurationError{Reason: fmt.Sprintf("unknown lifetime %q", s)}
	}
}

type Disposable interface {
	Dispose() error
}

// Factory builds a new instance. The policy is passed so instances can be
// labelled with the lifetime they were created under.
type Factory[T Disposable] func(ctx context.Context, policy Policy) (T, error)

type scopeKey struct {
	owner any
}

type Manager[T Disposable] struct {
	policy  Policy
	factory Factory[T]
	log     logger.Logger
	metrics metrics.Metrics

	mu       sync.Mutex
	instance T
	created  bool
	scopes   map[string]*Scope[T]
	closed   bool
}

func NewManager[T Disposable](policy Policy, factory Factory[T], log logger.Logger, m metrics.Metrics) *Manager[T] {
	return &Manager[T]{
		policy:  policy,
		factory: factory,
		log:     log.With(logger.String("lifetime", policy.String())),
		metrics: m,
		scopes:  make(map[string]*Scope[T]),
	}
}

func (m *Manager[T]) Policy() Policy {
	return m.policy
}

// Resolve returns the instance visible from ctx under the manager's policy.
func (m *Manager[T]) Resolve(ctx context.Context) (T, error) {
	if m.policy == ScopeWide {
		scope, ok := ScopeFrom[T](ctx, m)
		if !ok {
			var zero T
			return zero, &outbound.ConfigurationError{Reason: "scoped lifetime resolved outside of an open scope"}
		}
		return scope.resolve(ctx)
	}
	return m.resolveSingleton(ctx)
}

func (m *Manager[T]) resolveSingleton(ctx context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		var zero T
		return zero, &outbound.ConfigurationError{Reason: "lifetime manager is closed"}
	}
	if m.created {
		return m.instance, nil
	}

	instance, err := m.factory(ctx, m.policy)
	if err != nil {
		var zero T
		return zero, err
	}
	m.instance = instance
	m.created = true
	m.log.Debug(ctx, "process-wide instance created")
	return instance, nil
}

// BeginScope opens a scope and returns a context carrying it. A scope opened
// from a context that already carries one does not share its instance. Once
// the manager is closed the scope comes back already closed.
func (m *Manager[T]) BeginScope(ctx context.Context) (context.Context, *Scope[T]) {
	s := &Scope[T]{
		id:      uuid.NewString(),
		manager: m,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		s.closed = true
		return context.WithValue(ctx, scopeKey{owner: m}, s), s
	}
	m.scopes[s.id] = s
	m.mu.Unlock()

	m.metrics.RecordScopeOpened()
	m.log.Debug(ctx, "scope opened", logger.String("scope_id", s.id))
	return context.WithValue(ctx, scopeKey{owner: m}, s), s
}

// ActiveScopes reports the scopes that are open right now.
func (m *Manager[T]) ActiveScopes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

// Close disposes the process-wide instance and every scope still open.
// Later resolutions fail.
func (m *Manager[T]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	open := make([]*Scope[T], 0, len(m.scopes))
	for _, s := range m.scopes {
		open = append(open, s)
	}
	instance, created := m.instance, m.created
	var zero T
	m.instance, m.created = zero, false
	m.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if created {
		if err := instance.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("dispose process-wide instance: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager[T]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Manager[T]) forget(id string) {
	m.mu.Lock()
	delete(m.scopes, id)
	m.mu.Unlock()
}

// ScopeFrom returns the scope of manager m carried by ctx, if any.
func ScopeFrom[T Disposable](ctx context.Context, m *Manager[T]) (*Scope[T], bool) {
	s, ok := ctx.Value(scopeKey{owner: m}).(*Scope[T])
	return s, ok
}

type Scope[T Disposable] struct {
	id      string
	manager *Manager[T]

	mu       sync.Mutex
	instance T
	created  bool
	closed   bool
}

func (s *Scope[T]) ID() string {
	return s.id
}

func (s *Scope[T]) resolve(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.closed {
		return zero, &outbound.ConfigurationError{Reason: "scoped lifetime resolved from a closed scope"}
	}
	if s.manager.isClosed() {
		return zero, &outbound.ConfigurationError{Reason: "lifetime manager is closed"}
	}
	if s.created {
		return s.instance, nil
	}

	instance, err := s.manager.factory(ctx, s.manager.policy)
	if err != nil {
		return zero, err
	}
	s.instance = instance
	s.created = true
	return instance, nil
}

// Close disposes the scope's instance, if one was ever resolved. Calling it
// again is a no-op.
func (s *Scope[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	instance, created := s.instance, s.created
	var zero T
	s.instance = zero
	s.mu.Unlock()

	s.manager.forget(s.id)
	s.manager.metrics.RecordScopeClosed()
	s.manager.log.Debug(context.Background(), "scope closed",
		logger.String("scope_id", s.id),
		logger.Bool("resolved", created),
	)

	if !created {
		return nil
	}
	if err := instance.Dispose(); err != nil {
		return fmt.Errorf("dispose scope %s: %w", s.id, err)
	}
	return nil
}
