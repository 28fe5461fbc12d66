package person

import (
	"context"

	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
)

// Service is the only API other code should call to work with people.
// GetByID returns nil and no error when the person does not exist.
type Service interface {
	Add(ctx context.Context, person model.PersonModel) (model.PersonModel, error)
	Update(ctx context.Context, person model.PersonModel) (model.PersonModel, error)
	Delete(ctx context.Context, person model.PersonModel) error
	GetByID(ctx context.Context, id int64) (*model.PersonModel, error)
	GetAll(ctx context.Context) ([]model.PersonModel, error)
	Find(ctx context.Context, predicate outbound.PersonPredicate) ([]model.PersonModel, error)
	Dispose() error
}
