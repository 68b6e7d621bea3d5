package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrotelli01/largebnb/internal/model"
)

type recordingStore struct {
	upserts []model.BookingEdge
	deletes []string
}

func (s *recordingStore) UpsertBooking(_ context.Context, e model.BookingEdge) error {
	s.upserts = append(s.upserts, e)
	return nil
}

func (s *recordingStore) DeleteBooking(_ context.Context, reservationID string) error {
	s.deletes = append(s.deletes, reservationID)
	return nil
}

func TestHandleMessageUpsert(t *testing.T) {
	store := &recordingStore{}

	body := []byte(`{
		"action": "upsert",
		"reservation_id": "abc123",
		"user_id": 7,
		"property_id": 1,
		"check_in": "2026-09-10",
		"check_out": "2026-09-13",
		"total_price": 600
	}`)

	require.NoError(t, handleMessage(body, store))
	require.Len(t, store.upserts, 1)

	edge := store.upserts[0]
	assert.Equal(t, "abc123", edge.ReservationID)
	assert.Equal(t, uint64(7), edge.UserID)
	assert.Equal(t, uint64(1), edge.PropertyID)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), edge.CheckIn)
	assert.Equal(t, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), edge.CheckOut)
	assert.Equal(t, 600.0, edge.TotalPrice)
}

func TestHandleMessageDelete(t *testing.T) {
	store := &recordingStore{}

	body := []byte(`{"action": "delete", "reservation_id": "abc123"}`)
	require.NoError(t, handleMessage(body, store))
	assert.Equal(t, []string{"abc123"}, store.deletes)
	assert.Empty(t, store.upserts)
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	store := &recordingStore{}

	assert.Error(t, handleMessage([]byte("not json"), store))
	assert.Error(t, handleMessage([]byte(`{"action": "explode"}`), store))
	assert.Error(t, handleMessage([]byte(`{"action": "upsert", "check_in": "10/09/2026"}`), store))
	assert.Empty(t, store.upserts)
	assert.Empty(t, store.deletes)
}
