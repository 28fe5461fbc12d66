package person

import (
	"context"
	"time"

	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ outbound.PersonRepository = (*MockRepository)(nil)

func (m *MockRepository) Add(ctx context.Context, p *entity.Person) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, p *entity.Person) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, p *entity.Person) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*entity.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Person), args.Error(1)
}

func (m *MockRepository) GetAll(ctx context.Context) ([]*entity.Person, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Person), args.Error(1)
}

func (m *MockRepository) Find(ctx context.Context, predicate outbound.PersonPredicate) ([]*entity.Person, error) {
	args := m.Called(ctx, mock.Anything)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	var out []*entity.Person
	for _, p := range args.Get(0).([]*entity.Person) {
		if predicate(*p) {
			out = append(out, p)
		}
	}
	return out, args.Error(1)
}

func (m *MockRepository) Dispose() error {
	return m.Called().Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
}

var _ outbound.UnitOfWork = (*MockUnitOfWork)(nil)

func (m *MockUnitOfWork) Person() outbound.PersonRepository {
	return m.Called().Get(0).(outbound.PersonRepository)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(provider outbound.RepositoryProvider) error) error {
	return m.Called(ctx, fn).Error(0)
}

func (m *MockUnitOfWork) Dispose() error {
	return m.Called().Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordUseCaseExecution(name string, success bool, d time.Duration) {
	m.Called(name, success)
}

func (m *MockMetrics) RecordCommit(bool, int64, time.Duration) {}
func (m *MockMetrics) RecordContextCreated(string) {}
func (m *MockMetrics) RecordContextDisposed(string) {}
func (m *MockMetrics) RecordScopeOpened() {}
func (m *MockMetrics) RecordScopeClosed() {}
func (m *MockMetrics) ObserveHTTPRequestDuration(string, string, string, float64) {}
