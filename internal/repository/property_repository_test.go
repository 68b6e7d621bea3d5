package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lrotelli01/largebnb/internal/model"
)

func TestEncodeDecodeList(t *testing.T) {
	assert.Equal(t, "[]", encodeList(nil))
	assert.Equal(t, `["wifi","pool"]`, encodeList([]string{"wifi", "pool"}))

	assert.Nil(t, decodeList(sql.NullString{}))
	assert.Nil(t, decodeList(sql.NullString{String: "not json", Valid: true}))
	assert.Equal(t, []string{"wifi"}, decodeList(sql.NullString{String: `["wifi"]`, Valid: true}))
}

func TestEncodeDecodePois(t *testing.T) {
	assert.Equal(t, "[]", encodePois(nil))

	pois := []model.PointOfInterest{
		{Name: "Castello Ursino", Category: "museum", Longitude: 15.086, Latitude: 37.497},
		{Name: "Villa Bellini", Category: "park", Longitude: 15.081, Latitude: 37.508},
	}
	raw := encodePois(pois)
	got := decodePois(sql.NullString{String: raw, Valid: true})
	assert.Equal(t, pois, got)

	assert.Nil(t, decodePois(sql.NullString{}))
	assert.Nil(t, decodePois(sql.NullString{String: "{", Valid: true}))
}
