package outbound

import (
	"context"
)

// RepositoryProvider gives access to every repository bound to one unit of work.
type RepositoryProvider interface {
	Person() PersonRepository
}

// UnitOfWork owns the staged changes of one scope and flushes them atomically.
// Commit returns the number of affected rows. Do stages through the provider
// and commits when fn returns nil; an error from fn discards what was staged.
type UnitOfWork interface {
	RepositoryProvider
	Commit(ctx context.Context) (int64, error)
	Do(ctx context.Context, fn func(provider RepositoryProvider) error) error
	Dispose() error
}
