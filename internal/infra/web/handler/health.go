package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"
)

type healthOptions struct {
	checks []*health.Config
}

type HealthOption func(*healthOptions)

// Pinger is satisfied by the database store and by *sql.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

func WithStore(name string, store Pinger) HealthOption {
	return func(o *healthOptions) {
		if store == nil {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      name,
			Timeout:   5 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				return store.Ping(ctx)
			},
		})
	}
}

func NewHealthHandler(serviceName string, opts ...HealthOption) (http.Handler, error) {
	options := &healthOptions{
		checks: make([]*health.Config, 0),
	}

	for _, opt := range opts {
		opt(options)
	}

	h, err := health.New(health.WithComponent(health.Component{
		Name:    serviceName,
		Version: "1.0.0",
	}))
	if err != nil {
		return nil, err
	}

	for _, check := range options.checks {
		if err := h.Register(*check); err != nil {
			return nil, err
		}
	}

	return h.Handler(), nil
}
