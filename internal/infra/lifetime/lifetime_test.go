package lifetime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeContext struct {
	n        int64
	policy   Policy
	disposed atomic.Int32
}

func (f *fakeContext) Dispose() error {
	f.disposed.Add(1)
	return nil
}

type counter struct {
	calls atomic.Int64
	err   error
}

func (c *counter) factory(_ context.Context, policy Policy) (*fakeContext, error) {
	n := c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &fakeContext{n: n, policy: policy}, nil
}

func newManager(policy Policy, c *counter) *Manager[*fakeContext] {
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "test")
	return NewManager(policy, c.factory, logger.NewNop(), m)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"singleton", ProcessWide, false},
		{"", ProcessWide, false},
		{" Scoped ", ScopeWide, false},
		{"transient", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, outbound.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessWide_SameInstanceWithoutScope(t *testing.T) {
	c := &counter{}
	m := newManager(ProcessWide, c)
	ctx := context.Background()

	first, err := m.Resolve(ctx)
	require.NoError(t, err)
	second, err := m.Resolve(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), c.calls.Load())
	assert.Equal(t, ProcessWide, first.policy)
}

func TestProcessWide_SameInstanceAcrossScopes(t *testing.T) {
	c := &counter{}
	m := newManager(ProcessWide, c)

	ctxA, scopeA := m.BeginScope(context.Background())
	a, err := m.Resolve(ctxA)
	require.NoError(t, err)
	require.NoError(t, scopeA.Close())

	ctxB, scopeB := m.BeginScope(context.Background())
	defer scopeB.Close()
	b, err := m.Resolve(ctxB)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Zero(t, a.disposed.Load())
}

func TestProcessWide_ConcurrentResolutionCreatesOnce(t *testing.T) {
	c := &counter{}
	m := newManager(ProcessWide, c)

	var mu sync.Mutex
	seen := make(map[*fakeContext]struct{})
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			inst, err := m.Resolve(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			seen[inst] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Len(t, seen, 1)
	assert.Equal(t, int64(1), c.calls.Load())
}

func TestProcessWide_FailedCreationIsNotCached(t *testing.T) {
	c := &counter{err: errors.New("store down")}
	m := newManager(ProcessWide, c)

	_, err := m.Resolve(context.Background())
	assert.EqualError(t, err, "store down")

	c.err = nil
	inst, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, inst)
}

func TestScopeWide_SameInstanceWithinScope(t *testing.T) {
	m := newManager(ScopeWide, &counter{})

	ctx, scope := m.BeginScope(context.Background())
	defer scope.Close()

	first, err := m.Resolve(ctx)
	require.NoError(t, err)
	second, err := m.Resolve(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, ScopeWide, first.policy)
}

func TestScopeWide_DistinctInstancesAcrossScopes(t *testing.T) {
	m := newManager(ScopeWide, &counter{})

	ctxA, scopeA := m.BeginScope(context.Background())
	a, err := m.Resolve(ctxA)
	require.NoError(t, err)
	require.NoError(t, scopeA.Close())

	ctxB, scopeB := m.BeginScope(context.Background())
	b, err := m.Resolve(ctxB)
	require.NoError(t, err)
	require.NoError(t, scopeB.Close())

	assert.NotSame(t, a, b)
	assert.NotEqual(t, scopeA.ID(), scopeB.ID())
	assert.Equal(t, int32(1), a.disposed.Load())
	assert.Equal(t, int32(1), b.disposed.Load())
}

func TestScopeWide_NestedScopeDoesNotShare(t *testing.T) {
	m := newManager(ScopeWide, &counter{})

	outerCtx, outer := m.BeginScope(context.Background())
	defer outer.Close()
	innerCtx, inner := m.BeginScope(outerCtx)

	o, err := m.Resolve(outerCtx)
	require.NoError(t, err)
	i, err := m.Resolve(innerCtx)
	require.NoError(t, err)
	require.NoError(t, inner.Close())

	assert.NotSame(t, o, i)
	assert.Zero(t, o.disposed.Load())
	assert.Equal(t, 1, m.ActiveScopes())
}

func TestScopeWide_OutsideScopeIsConfigurationError(t *testing.T) {
	c := &counter{}
	m := newManager(ScopeWide, c)

	_, err := m.Resolve(context.Background())

	assert.ErrorIs(t, err, outbound.ErrConfiguration)
	assert.Zero(t, c.calls.Load())
}

func TestScopeWide_ClosedScopeIsConfigurationError(t *testing.T) {
	m := newManager(ScopeWide, &counter{})
	ctx, scope := m.BeginScope(context.Background())
	require.NoError(t, scope.Close())

	_, err := m.Resolve(ctx)

	assert.ErrorIs(t, err, outbound.ErrConfiguration)
}

func TestScope_CloseDisposesExactlyOnce(t *testing.T) {
	m := newManager(ScopeWide, &counter{})
	ctx, scope := m.BeginScope(context.Background())
	inst, err := m.Resolve(ctx)
	require.NoError(t, err)

	require.NoError(t, scope.Close())
	require.NoError(t, scope.Close())

	assert.Equal(t, int32(1), inst.disposed.Load())
	assert.Zero(t, m.ActiveScopes())
}

func TestScope_CloseWithoutResolutionCreatesNothing(t *testing.T) {
	c := &counter{}
	m := newManager(ScopeWide, c)
	_, scope := m.BeginScope(context.Background())

	require.NoError(t, scope.Close())

	assert.Zero(t, c.calls.Load())
}

func TestManager_CloseReleasesEverything(t *testing.T) {
	singletons := newManager(ProcessWide, &counter{})
	single, err := singletons.Resolve(context.Background())
	require.NoError(t, err)

	scoped := newManager(ScopeWide, &counter{})
	ctx, _ := scoped.BeginScope(context.Background())
	inScope, err := scoped.Resolve(ctx)
	require.NoError(t, err)

	require.NoError(t, singletons.Close())
	require.NoError(t, singletons.Close())
	require.NoError(t, scoped.Close())

	assert.Equal(t, int32(1), single.disposed.Load())
	assert.Equal(t, int32(1), inScope.disposed.Load())
	assert.Zero(t, scoped.ActiveScopes())

	_, err = singletons.Resolve(context.Background())
	assert.ErrorIs(t, err, outbound.ErrConfiguration)
}

func TestManager_BeginScopeAfterClose(t *testing.T) {
	c := &counter{}
	m := newManager(ScopeWide, c)
	require.NoError(t, m.Close())

	ctx, scope := m.BeginScope(context.Background())

	assert.Zero(t, m.ActiveScopes())
	_, err := m.Resolve(ctx)
	assert.ErrorIs(t, err, outbound.ErrConfiguration)
	assert.NoError(t, scope.Close())
	assert.Zero(t, c.calls.Load())
}
