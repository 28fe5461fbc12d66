package mapper

import (
	"testing"

	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEntity_CopiesEveryField(t *testing.T) {
	m := model.PersonModel{ID: 3, Name: "Ana"}

	e := ToEntity(m)

	require.NotNil(t, e)
	assert.Equal(t, int64(3), e.ID)
	assert.Equal(t, "Ana", e.Name)
}

func TestToModel_DoesNotAliasTheEntity(t *testing.T) {
	e := &entity.Person{ID: 9, Name: "Bia"}

	m := ToModel(e)
	e.Name = "changed"

	assert.Equal(t, model.PersonModel{ID: 9, Name: "Bia"}, m)
}

func TestToModel_NilEntity(t *testing.T) {
	assert.Equal(t, model.PersonModel{}, ToModel(nil))
}

func TestToModels_KeepsOrder(t *testing.T) {
	people := []*entity.Person{
		{ID: 2, Name: "B"},
		{ID: 1, Name: "A"},
		{ID: 3, Name: "C"},
	}

	models := ToModels(people)

	assert.Equal(t, []model.PersonModel{
		{ID: 2, Name: "B"},
		{ID: 1, Name: "A"},
		{ID: 3, Name: "C"},
	}, models)
}

func TestToModels_NilSliceMapsToEmpty(t *testing.T) {
	models := ToModels(nil)

	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestToEntities_RoundTrip(t *testing.T) {
	in := []model.PersonModel{{ID: 1, Name: "A"}, {ID: 0, Name: "B"}}

	out := ToModels(ToEntities(in))

	assert.Equal(t, in, out)
}
