package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/lrotelli01/largebnb/internal/model"
)

// ErrReviewExists is returned when a reservation already has a review.
var ErrReviewExists = errors.New("reservation already reviewed")

// ReviewRepo manages property reviews. One review per reservation is
// enforced by a unique key on reviews.reservation_id.
type ReviewRepo struct{ DB *sql.DB }

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewCols = `id, reservation_id, property_id, user_id, rating, cleanliness, communication,
	location, value, text, manager_reply, created_at`

// Create inserts a review and populates its generated ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO reviews (reservation_id, property_id, user_id, rating, cleanliness, communication,
		 location, value, text) VALUES (?,?,?,?,?,?,?,?,?)`,
		rv.ReservationID, rv.PropertyID, rv.UserID, rv.Rating, rv.Cleanliness, rv.Communication,
		rv.Location, rv.Value, rv.Text)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrReviewExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ListByProperty returns a property's reviews, newest first.
func (r *ReviewRepo) ListByProperty(ctx context.Context, propertyID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE property_id=? ORDER BY created_at DESC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// ListByUser returns the reviews written by a user, newest first.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// FindByID returns a review or ErrNotFound.
func (r *ReviewRepo) FindByID(ctx context.Context, id uint64) (*model.Review, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+reviewCols+` FROM reviews WHERE id=? LIMIT 1`, id)
	rv, err := scanReview(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
	}
	return rv, err
}

// SetManagerReply stores the manager's reply on a review.
func (r *ReviewRepo) SetManagerReply(ctx context.Context, reviewID uint64, reply string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE reviews SET manager_reply=? WHERE id=?`, reply, reviewID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
	}
	return nil
}

// AggregateForProperty returns the average overall rating and review
// count for a property.
func (r *ReviewRepo) AggregateForProperty(ctx context.Context, propertyID uint64) (avg float64, count uint32, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE property_id=?`, propertyID).
		Scan(&avg, &count)
	return avg, count, err
}

func scanReview(scan func(...any) error) (*model.Review, error) {
	var rv model.Review
	var reply sql.NullString
	err := scan(&rv.ID, &rv.ReservationID, &rv.PropertyID, &rv.UserID, &rv.Rating, &rv.Cleanliness,
		&rv.Communication, &rv.Location, &rv.Value, &rv.Text, &reply, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if reply.Valid {
		rv.ManagerReply = &reply.String
	}
	return &rv, nil
}

func collectReviews(rows *sql.Rows) ([]model.Review, error) {
	out := make([]model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}
