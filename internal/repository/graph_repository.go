package repository

import (
	"context"
	"database/sql"

	"github.com/lrotelli01/largebnb/internal/model"
)

// GraphRepo maintains the booking_edges projection: one row per
// confirmed reservation linking a user to a property with the stay
// dates and total price. The table is derived data kept in sync by the
// reservation.synced queue consumer; Rebuild can regenerate it from
// the reservations table after data loss or drift.
type GraphRepo struct{ DB *sql.DB }

// NewGraphRepo returns a new GraphRepo bound to the given database.
func NewGraphRepo(db *sql.DB) *GraphRepo { return &GraphRepo{DB: db} }

// UpsertBooking writes or refreshes the edge for a reservation.
func (r *GraphRepo) UpsertBooking(ctx context.Context, e model.BookingEdge) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO booking_edges (reservation_id, user_id, property_id, check_in, check_out, total_price)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE user_id=VALUES(user_id), property_id=VALUES(property_id),
		 check_in=VALUES(check_in), check_out=VALUES(check_out), total_price=VALUES(total_price)`,
		e.ReservationID, e.UserID, e.PropertyID, e.CheckIn, e.CheckOut, e.TotalPrice)
	return err
}

// DeleteBooking removes the edge for a cancelled reservation. Absent
// edges are ignored.
func (r *GraphRepo) DeleteBooking(ctx context.Context, reservationID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM booking_edges WHERE reservation_id=?`, reservationID)
	return err
}

// DeleteByUser removes every edge a user contributed, for account
// deletion cleanup.
func (r *GraphRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM booking_edges WHERE user_id=?`, userID)
	return err
}

// Collaborative returns properties booked by users who also booked the
// given property, ranked by how many such users booked each one.
func (r *GraphRepo) Collaborative(ctx context.Context, propertyID uint64, limit int) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT other.property_id
		 FROM booking_edges seed
		 JOIN booking_edges other ON other.user_id = seed.user_id AND other.property_id <> seed.property_id
		 WHERE seed.property_id = ?
		 GROUP BY other.property_id
		 ORDER BY COUNT(DISTINCT other.user_id) DESC
		 LIMIT ?`, propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0, limit)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BookedPropertyIDs returns the properties a user has confirmed
// bookings for, most recent stay first.
func (r *GraphRepo) BookedPropertyIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT property_id FROM booking_edges WHERE user_id=? ORDER BY check_in DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Rebuild drops every edge and regenerates the projection from the
// confirmed reservations currently on file. Prices are recomputed from
// the room's current rates.
func (r *GraphRepo) Rebuild(ctx context.Context) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_edges`); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO booking_edges (reservation_id, user_id, property_id, check_in, check_out, total_price)
		 SELECT res.id, res.user_id, rm.property_id, res.check_in, res.check_out,
		        GREATEST(1, DATEDIFF(res.check_out, res.check_in)) *
		        (res.adults * rm.price_adults + res.children * rm.price_children)
		 FROM reservations res
		 JOIN rooms rm ON rm.id = res.room_id
		 WHERE res.status = ?`, model.StatusConfirmed)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
