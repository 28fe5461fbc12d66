package database

import (
	"context"

	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
)

type PersonRepositoryImpl struct {
	uow *Context
	set *EntitySet[entity.Person]
}

var _ outbound.PersonRepository = (*PersonRepositoryImpl)(nil)

func NewPersonRepository(uow *Context) *PersonRepositoryImpl {
	return &PersonRepositoryImpl{
		uow: uow,
		set: SetFor(uow, PersonTable),
	}
}

func (r *PersonRepositoryImpl) Add(ctx context.Context, person *entity.Person) error {
	return r.set.Add(ctx, person)
}

func (r *PersonRepositoryImpl) Update(ctx context.Context, person *entity.Person) error {
	return r.set.Update(ctx, person)
}

// Delete stages removal of the tracked person with the same ID; the other
// fields of person play no part.
func (r *PersonRepositoryImpl) Delete(ctx context.Context, person *entity.Person) error {
	return r.set.Remove(ctx, person)
}

func (r *PersonRepositoryImpl) GetByID(ctx context.Context, id int64) (*entity.Person, error) {
	return r.set.Find(ctx, id)
}

func (r *PersonRepositoryImpl) GetAll(ctx context.Context) ([]*entity.Person, error) {
	return r.set.Query(ctx)
}

func (r *PersonRepositoryImpl) Find(ctx context.Context, predicate outbound.PersonPredicate) ([]*entity.Person, error) {
	return r.set.Where(ctx, predicate)
}

func (r *PersonRepositoryImpl) Dispose() error {
	return r.uow.Dispose()
}
