// Package container wires the persistence context, repository and service
// together. Repositories and services are built on every request; the
// persistence context follows the configured lifetime policy.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/DioGolang/GoPeople/internal/application/usecase/person"
	"github.com/DioGolang/GoPeople/internal/infra/database"
	"github.com/DioGolang/GoPeople/internal/infra/lifetime"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
)

type Container struct {
	store    *database.Store
	contexts *lifetime.Manager[*database.Context]
	log      logger.Logger
	metrics  metrics.Metrics
}

func New(store *database.Store, policy lifetime.Policy, log logger.Logger, m metrics.Metrics) *Container {
	factory := func(ctx context.Context, p lifetime.Policy) (*database.Context, error) {
		return database.NewContext(ctx, store, log, m, database.WithLifetime(p.String()))
	}
	return &Container{
		store:    store,
		contexts: lifetime.NewManager[*database.Context](policy, factory, log, m),
		log:      log,
		metrics:  m,
	}
}

func (c *Container) Policy() lifetime.Policy {
	return c.contexts.Policy()
}

func (c *Container) BeginScope(ctx context.Context) (context.Context, *lifetime.Scope[*database.Context]) {
	return c.contexts.BeginScope(ctx)
}

func (c *Container) ActiveScopes() int {
	return c.contexts.ActiveScopes()
}

// UnitOfWork resolves the persistence context visible from ctx.
func (c *Container) UnitOfWork(ctx context.Context) (*database.Context, error) {
	uow, err := c.contexts.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve unit of work: %w", err)
	}
	return uow, nil
}

func (c *Container) PersonRepository(ctx context.Context) (*database.PersonRepositoryImpl, error) {
	uow, err := c.UnitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	return database.NewPersonRepository(uow), nil
}

// PersonService builds a service whose repository and commit boundary share
// the same persistence context.
func (c *Container) PersonService(ctx context.Context) (person.Service, error) {
	uow, err := c.UnitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	svc := person.NewService(uow, database.NewPersonRepository(uow), c.log)
	return &person.MetricsDecorator{Next: svc, Metrics: c.metrics}, nil
}

// Close releases every persistence context still alive, then the store.
func (c *Container) Close() error {
	return errors.Join(c.contexts.Close(), c.store.Close())
}
