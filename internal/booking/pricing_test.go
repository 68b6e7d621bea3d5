package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lrotelli01/largebnb/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(date(2026, 7, 1), date(2026, 7, 4)))
	assert.Equal(t, 1, Nights(date(2026, 7, 1), date(2026, 7, 2)))

	// Floored at 1, even for degenerate input.
	assert.Equal(t, 1, Nights(date(2026, 7, 1), date(2026, 7, 1)))
	assert.Equal(t, 1, Nights(date(2026, 7, 4), date(2026, 7, 1)))
}

func TestTotalPrice(t *testing.T) {
	room := &model.Room{PricePerNightAdults: 100, PricePerNightChildren: 50}

	// 3 nights x (2 x 100) = 600
	assert.Equal(t, 600.0, TotalPrice(room, date(2026, 7, 1), date(2026, 7, 4), 2, 0))

	// 2 nights x (1 x 100 + 2 x 50) = 400
	assert.Equal(t, 400.0, TotalPrice(room, date(2026, 7, 1), date(2026, 7, 3), 1, 2))

	free := &model.Room{}
	assert.Equal(t, 0.0, TotalPrice(free, date(2026, 7, 1), date(2026, 7, 3), 2, 1))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -3.33, Round2(-3.333))
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	in := time.Date(2026, 7, 15, 23, 45, 12, 0, loc)

	got := DateOnly(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, date(2026, 7, 15), got)

	// Already-midnight UTC values pass through unchanged.
	assert.Equal(t, date(2026, 7, 1), DateOnly(date(2026, 7, 1)))
}
