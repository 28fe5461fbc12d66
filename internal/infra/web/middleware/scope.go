package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/DioGolang/GoPeople/internal/infra/database"
	"github.com/DioGolang/GoPeople/internal/infra/lifetime"
	"github.com/DioGolang/GoPeople/pkg/logger"
)

// ScopeOpener is implemented by the dependency container.
type ScopeOpener interface {
	BeginScope(ctx context.Context) (context.Context, *lifetime.Scope[*database.Context])
}

// Scope opens one lifetime scope per request and closes it once the handler
// returns, releasing the request's persistence context.
func Scope(opener ScopeOpener, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, scope := opener.BeginScope(r.Context())
			defer func() {
				if err := scope.Close(); err != nil {
					log.Error(ctx, "failed to close request scope",
						logger.String("scope_id", scope.ID()),
						logger.WithError(err),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Serialize lets one request through at a time. A process-wide persistence
// context is not safe for concurrent use.
func Serialize() func(next http.Handler) http.Handler {
	var mu sync.Mutex
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}
