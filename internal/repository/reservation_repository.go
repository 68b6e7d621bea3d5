package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lrotelli01/largebnb/internal/model"
)

// ReservationRepo manages durable reservation rows. Only confirmed (or
// later cancelled / completed) bookings ever reach this table: the
// pending stage lives entirely in the lock store.
type ReservationRepo struct{ DB *sql.DB }

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationCols = `id, user_id, room_id, adults, children, check_in, check_out, status, created_at`

func scanReservation(scan func(...any) error) (*model.Reservation, error) {
	var res model.Reservation
	err := scan(&res.ID, &res.UserID, &res.RoomID, &res.Adults, &res.Children,
		&res.CheckIn, &res.CheckOut, &res.Status, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindOverlapping returns non-cancelled reservations on the room whose
// [check_in, check_out) range intersects the given dates.
func (r *ReservationRepo) FindOverlapping(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations
		 WHERE room_id=? AND status <> ? AND check_in < ? AND check_out > ?`,
		roomID, model.StatusCancelled, checkOut, checkIn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// FindByID returns a single reservation or ErrNotFound.
func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id=? LIMIT 1`, id)
	res, err := scanReservation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	return res, err
}

// Create inserts a reservation with its application-generated ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservations (id, user_id, room_id, adults, children, check_in, check_out, status, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		res.ID, res.UserID, res.RoomID, res.Adults, res.Children,
		res.CheckIn, res.CheckOut, res.Status, res.CreatedAt)
	return err
}

// Update rewrites the bookable fields of an existing reservation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	out, err := r.DB.ExecContext(ctx,
		`UPDATE reservations SET room_id=?, adults=?, children=?, check_in=?, check_out=?, status=? WHERE id=?`,
		res.RoomID, res.Adults, res.Children, res.CheckIn, res.CheckOut, res.Status, res.ID)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, res.ID)
	}
	return nil
}

// UpdateStatus transitions a reservation to the given status.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	out, err := r.DB.ExecContext(ctx, `UPDATE reservations SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	return nil
}

// ListByUser returns a customer's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByRoomIDs returns reservations across a set of rooms whose stay
// intersects [from, to). A zero `to` means no upper bound. Used by
// manager views and analytics.
func (r *ReservationRepo) ListByRoomIDs(ctx context.Context, roomIDs []uint64, from, to time.Time) ([]model.Reservation, error) {
	if len(roomIDs) == 0 {
		return []model.Reservation{}, nil
	}
	placeholders := make([]string, len(roomIDs))
	args := make([]any, 0, len(roomIDs)+2)
	for i, id := range roomIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE room_id IN (` + strings.Join(placeholders, ",") + `)`
	if !from.IsZero() {
		q += ` AND check_out > ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		q += ` AND check_in < ?`
		args = append(args, to)
	}
	q += ` ORDER BY check_in`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
