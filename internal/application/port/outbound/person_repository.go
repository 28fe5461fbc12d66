package outbound

import (
	"context"

	"github.com/DioGolang/GoPeople/internal/domain/entity"
)

// PersonPredicate filters people by their fields.
type PersonPredicate func(p entity.Person) bool

// PersonRepository stages changes on the unit of work it was built with.
// It never commits; that boundary belongs to the caller.
type PersonRepository interface {
	Add(ctx context.Context, person *entity.Person) error
	Update(ctx context.Context, person *entity.Person) error
	Delete(ctx context.Context, person *entity.Person) error
	GetByID(ctx context.Context, id int64) (*entity.Person, error)
	GetAll(ctx context.Context) ([]*entity.Person, error)
	Find(ctx context.Context, predicate PersonPredicate) ([]*entity.Person, error)
	Dispose() error
}
