package person

import (
	"context"
	"time"

	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/pkg/metrics"
)

type MetricsDecorator struct {
	Next    Service
	Metrics metrics.Metrics
}

func (d *MetricsDecorator) Add(ctx context.Context, in model.PersonModel) (model.PersonModel, error) {
	start := time.Now()
	out, err := d.Next.Add(ctx, in)
	d.Metrics.RecordUseCaseExecution("AddPerson", err == nil, time.Since(start))
	return out, err
}

func (d *MetricsDecorator) Update(ctx context.Context, in model.PersonModel) (model.PersonModel, error) {
	start := time.Now()
	out, err := d.Next.Update(ctx, in)
	d.Metrics.RecordUseCaseExecution("UpdatePerson", err == nil, time.Since(start))
	return out, err
}

func (d *MetricsDecorator) Delete(ctx context.Context, in model.PersonModel) error {
	start := time.Now()
	err := d.Next.Delete(ctx, in)
	d.Metrics.RecordUseCaseExecution("DeletePerson", err == nil, time.Since(start))
	return err
}

func (d *MetricsDecorator) GetByID(ctx context.Context, id int64) (*model.PersonModel, error) {
	start := time.Now()
	out, err := d.Next.GetByID(ctx, id)
	d.Metrics.RecordUseCaseExecution("GetPersonByID", err == nil, time.Since(start))
	return out, err
}

func (d *MetricsDecorator) GetAll(ctx context.Context) ([]model.PersonModel, error) {
	start := time.Now()
	out, err := d.Next.GetAll(ctx)
	d.Metrics.RecordUseCaseExecution("GetAllPeople", err == nil, time.Since(start))
	return out, err
}

func (d *MetricsDecorator) Find(ctx context.Context, predicate outbound.PersonPredicate) ([]model.PersonModel, error) {
	start := time.Now()
	out, err := d.Next.Find(ctx, predicate)
	d.Metrics.RecordUseCaseExecution("FindPeople", err == nil, time.Since(start))
	return out, err
}

func (d *MetricsDecorator) Dispose() error {
	return d.Next.Dispose()
}
