package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/utils"
)

// UserRepo provides access to the single `users` table holding both
// customers and managers. Role-specific columns (payment method for
// customers, billing data for managers) are nullable and only read for
// the matching role, so the two variants surface as distinct structs.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// NewAccount carries the fields accepted at registration time.
type NewAccount struct {
	Email       string
	Username    string
	Password    string
	Role        string
	Name        string
	Surname     string
	PhoneNumber string
	Birthdate   *time.Time
	IBAN        string // managers only
	VATNumber   string // managers only
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, acc NewAccount, bcryptCost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(acc.Email))
	hash, err := utils.HashPassword(acc.Password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, role, name, surname, phone_number, birthdate, iban, vat_number)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		email, acc.Username, hash, acc.Role, acc.Name, acc.Surname, acc.PhoneNumber, acc.Birthdate, acc.IBAN, acc.VATNumber)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userCols = `id, email, username, password_hash, role, name, surname, phone_number, birthdate, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var birthdate sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Name, &u.Surname, &u.PhoneNumber, &birthdate, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if birthdate.Valid {
		b := birthdate.Time
		u.Birthdate = &b
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email=? LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id=? LIMIT 1`, id))
}

// FindCustomer resolves an id into a Customer, loading the saved
// payment method when one is on file. It returns ErrNotFound for an
// unknown id and ErrNotCustomer when the account is a manager. This is
// the customer capability consumed by the reservation engine.
func (r *UserRepo) FindCustomer(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT ` + userCols + `, pm_id, pm_card_type, pm_last4, pm_expiry, pm_holder_name, pm_gateway_token
	           FROM users WHERE id=? LIMIT 1`
	var u model.User
	var birthdate sql.NullTime
	var pmID, pmType, pmLast4, pmExpiry, pmHolder, pmToken sql.NullString
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Name, &u.Surname, &u.PhoneNumber, &birthdate, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&pmID, &pmType, &pmLast4, &pmExpiry, &pmHolder, &pmToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleCustomer {
		return nil, ErrNotCustomer
	}
	if birthdate.Valid {
		b := birthdate.Time
		u.Birthdate = &b
	}
	c := &model.Customer{User: u}
	if pmID.Valid && pmToken.Valid {
		c.PaymentMethod = &model.PaymentMethod{
			ID:           pmID.String,
			CardType:     pmType.String,
			Last4Digits:  pmLast4.String,
			ExpiryDate:   pmExpiry.String,
			HolderName:   pmHolder.String,
			GatewayToken: pmToken.String,
		}
	}
	return c, nil
}

// FindManager resolves an id into a Manager. It returns ErrNotFound for
// an unknown id and ErrForbidden when the account is not a manager.
func (r *UserRepo) FindManager(ctx context.Context, id uint64) (*model.Manager, error) {
	const q = `SELECT ` + userCols + `, iban, vat_number, billing_address FROM users WHERE id=? LIMIT 1`
	var u model.User
	var birthdate sql.NullTime
	var iban, vat, billing sql.NullString
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Name, &u.Surname, &u.PhoneNumber, &birthdate, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&iban, &vat, &billing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleManager {
		return nil, ErrForbidden
	}
	if birthdate.Valid {
		b := birthdate.Time
		u.Birthdate = &b
	}
	return &model.Manager{User: u, IBAN: iban.String, VATNumber: vat.String, BillingAddress: billing.String}, nil
}

// SetPaymentMethod stores (or replaces) the customer's tokenized card.
func (r *UserRepo) SetPaymentMethod(ctx context.Context, userID uint64, pm *model.PaymentMethod) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET pm_id=?, pm_card_type=?, pm_last4=?, pm_expiry=?, pm_holder_name=?, pm_gateway_token=?
		 WHERE id=? AND role=?`,
		pm.ID, pm.CardType, pm.Last4Digits, pm.ExpiryDate, pm.HolderName, pm.GatewayToken,
		userID, model.RoleCustomer)
	return err
}

// ClearPaymentMethod removes the customer's saved card.
func (r *UserRepo) ClearPaymentMethod(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET pm_id=NULL, pm_card_type=NULL, pm_last4=NULL, pm_expiry=NULL, pm_holder_name=NULL, pm_gateway_token=NULL
		 WHERE id=?`, userID)
	return err
}

// AddFavorite records a favored property for a customer. Duplicate
// inserts are ignored.
func (r *UserRepo) AddFavorite(ctx context.Context, userID, propertyID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO favorites (user_id, property_id) VALUES (?,?)`, userID, propertyID)
	return err
}

// RemoveFavorite deletes a favored property. Removing a property that
// was never favored is a no-op.
func (r *UserRepo) RemoveFavorite(ctx context.Context, userID, propertyID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id=? AND property_id=?`, userID, propertyID)
	return err
}

// Delete removes the user row. Favorites and refresh tokens cascade
// through foreign keys.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListFavorites returns the property IDs the customer has favored.
func (r *UserRepo) ListFavorites(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT property_id FROM favorites WHERE user_id=? ORDER BY created_at DESC`, userID)
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
