package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lrotelli01/largebnb/internal/model"
)

func stay(status string, checkOutDaysFromToday int, today time.Time) model.Reservation {
	return model.Reservation{
		Status:   status,
		CheckIn:  today.AddDate(0, 0, checkOutDaysFromToday-3),
		CheckOut: today.AddDate(0, 0, checkOutDaysFromToday),
	}
}

func TestHasBlockingStay(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no reservations", func(t *testing.T) {
		assert.False(t, hasBlockingStay(nil, today))
	})

	t.Run("future confirmed stay blocks", func(t *testing.T) {
		stays := []model.Reservation{stay(model.StatusConfirmed, 30, today)}
		assert.True(t, hasBlockingStay(stays, today))
	})

	t.Run("stay in progress blocks", func(t *testing.T) {
		stays := []model.Reservation{stay(model.StatusConfirmed, 2, today)}
		assert.True(t, hasBlockingStay(stays, today))
	})

	t.Run("cancelled future stay does not block", func(t *testing.T) {
		stays := []model.Reservation{stay(model.StatusCancelled, 30, today)}
		assert.False(t, hasBlockingStay(stays, today))
	})

	t.Run("past stays do not block", func(t *testing.T) {
		stays := []model.Reservation{
			stay(model.StatusCompleted, -10, today),
			stay(model.StatusConfirmed, -1, today),
		}
		assert.False(t, hasBlockingStay(stays, today))
	})

	t.Run("check-out today does not block", func(t *testing.T) {
		stays := []model.Reservation{stay(model.StatusConfirmed, 0, today)}
		assert.False(t, hasBlockingStay(stays, today))
	})

	t.Run("one live stay among history blocks", func(t *testing.T) {
		stays := []model.Reservation{
			stay(model.StatusCompleted, -30, today),
			stay(model.StatusCancelled, 10, today),
			stay(model.StatusConfirmed, 14, today),
		}
		assert.True(t, hasBlockingStay(stays, today))
	})
}
