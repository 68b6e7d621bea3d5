package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lrotelli01/largebnb/internal/model"
)

func TestToPropertyPart(t *testing.T) {
	p := &model.Property{
		ID:          7,
		ManagerID:   99,
		Name:        "Villa Aurora",
		Description: "Sea view villa",
		City:        "Catania",
		Region:      "Sicily",
		Country:     "IT",
		Amenities:   []string{"wifi", "pool"},
		Photos:      []string{"https://cdn.example/aurora.jpg"},
		Pois: []model.PointOfInterest{
			{Name: "Teatro Romano", Category: "museum", Longitude: 15.083, Latitude: 37.502},
			{Name: "San Giovanni Li Cuti", Category: "beach", Longitude: 15.117, Latitude: 37.520},
		},
		RatingAvg:   4.5,
		RatingCount: 12,
	}

	part := toPropertyPart(p)
	assert.Equal(t, uint64(7), part.ID)
	assert.Equal(t, "Villa Aurora", part.Name)
	assert.Equal(t, []string{"wifi", "pool"}, part.Amenities)
	assert.Len(t, part.Pois, 2)
	assert.Equal(t, "Teatro Romano", part.Pois[0].Name)
	assert.Equal(t, "beach", part.Pois[1].Category)
	assert.Equal(t, 4.5, part.RatingAvg)
	assert.Equal(t, uint32(12), part.RatingCount)
}
