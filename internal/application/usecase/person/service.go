package person

import (
	"context"
	"errors"
	"fmt"

	"github.com/DioGolang/GoPeople/internal/application/mapper"
	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
	"github.com/DioGolang/GoPeople/pkg/logger"
)

// ServiceImpl maps models to entities, stages them on the repository and
// commits the unit of work the repository shares. It owns no state itself.
type ServiceImpl struct {
	UnitOfWork outbound.UnitOfWork
	Repository outbound.PersonRepository
	Logger     logger.Logger
}

func NewService(uow outbound.UnitOfWork, repository outbound.PersonRepository, log logger.Logger) *ServiceImpl {
	return &ServiceImpl{
		UnitOfWork: uow,
		Repository: repository,
		Logger:     log,
	}
}

func (s *ServiceImpl) Add(ctx context.Context, in model.PersonModel) (model.PersonModel, error) {
	person := mapper.ToEntity(in)
	if err := s.Repository.Add(ctx, person); err != nil {
		return model.PersonModel{}, fmt.Errorf("stage add: %w", err)
	}
	if err := s.commit(ctx, "add"); err != nil {
		return model.PersonModel{}, err
	}
	return mapper.ToModel(person), nil
}

// Update is an upsert: a person whose ID is unknown is inserted.
func (s *ServiceImpl) Update(ctx context.Context, in model.PersonModel) (model.PersonModel, error) {
	person := mapper.ToEntity(in)
	if err := s.Repository.Update(ctx, person); err != nil {
		return model.PersonModel{}, fmt.Errorf("stage update: %w", err)
	}
	if err := s.commit(ctx, "update"); err != nil {
		return model.PersonModel{}, err
	}
	return mapper.ToModel(person), nil
}

func (s *ServiceImpl) Delete(ctx context.Context, in model.PersonModel) error {
	if err := s.Repository.Delete(ctx, mapper.ToEntity(in)); err != nil {
		return fmt.Errorf("stage delete: %w", err)
	}
	return s.commit(ctx, "delete")
}

func (s *ServiceImpl) GetByID(ctx context.Context, id int64) (*model.PersonModel, error) {
	person, err := s.Repository.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := mapper.ToModel(person)
	return &m, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]model.PersonModel, error) {
	people, err := s.Repository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToModels(people), nil
}

func (s *ServiceImpl) Find(ctx context.Context, predicate outbound.PersonPredicate) ([]model.PersonModel, error) {
	people, err := s.Repository.Find(ctx, predicate)
	if err != nil {
		return nil, err
	}
	return mapper.ToModels(people), nil
}

func (s *ServiceImpl) Dispose() error {
	return s.Repository.Dispose()
}

func (s *ServiceImpl) commit(ctx context.Context, op string) error {
	rows, err := s.UnitOfWork.Commit(ctx)
	if err != nil {
		return fmt.Errorf("%s person: %w", op, err)
	}
	s.Logger.Debug(ctx, "person change committed", logger.String("op", op), logger.Int64("rows", rows))
	return nil
}
