// Package mapper converts between persisted entities and application models.
package mapper

import (
	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
)

func ToEntity(m model.PersonModel) *entity.Person {
	return &entity.Person{
		ID:   m.ID,
		Name: m.Name,
	}
}

func ToModel(p *entity.Person) model.PersonModel {
	if p == nil {
		return model.PersonModel{}
	}
	return model.PersonModel{
		ID:   p.ID,
		Name: p.Name,
	}
}

func ToEntities(models []model.PersonModel) []*entity.Person {
	out := make([]*entity.Person, len(models))
	for i, m := range models {
		out[i] = ToEntity(m)
	}
	return out
}

func ToModels(people []*entity.Person) []model.PersonModel {
	out := make([]model.PersonModel, len(people))
	for i, p := range people {
		out[i] = ToModel(p)
	}
	return out
}
