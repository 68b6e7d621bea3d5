package booking

import (
	"math"
	"time"

	"github.com/lrotelli01/largebnb/internal/model"
)

// Nights returns the number of billable nights between checkIn and
// checkOut, floored at 1.  Date validation happens before pricing, so
// same-day or inverted inputs should not occur, but the function itself
// must never produce zero or negative nights.
func Nights(checkIn, checkOut time.Time) int {
	n := int(checkOut.Sub(checkIn).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n
}

// TotalPrice computes the cost of a stay:
// nights × (adults × adult rate + children × child rate).
// Unset nightly rates are zero.  The result is not rounded here;
// rounding to two decimals happens only at presentation boundaries.
func TotalPrice(room *model.Room, checkIn, checkOut time.Time, adults, children int) float64 {
	nightly := float64(adults)*room.PricePerNightAdults + float64(children)*room.PricePerNightChildren
	return float64(Nights(checkIn, checkOut)) * nightly
}

// Round2 rounds a currency amount to two decimal places.  Used when an
// amount crosses a presentation boundary (messages, JSON responses) and
// never during internal accumulation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly truncates t to midnight UTC.  Check-in and check-out are
// calendar dates; comparing anything finer than a day invites
// off-by-one overlap bugs.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
