package model

import "time"

// Role names stored in users.role and embedded in JWT claims.  Customers
// book rooms; managers own properties.  The two roles are modelled as
// distinct structs (Customer, Manager) so that role-specific data such as
// a saved payment method never leaks onto the wrong variant.
const (
	RoleCustomer = "CUSTOMER"
	RoleManager  = "MANAGER"
)

// User holds the fields shared by every account in the `users` table.
// The json tags are omitted because these structs are used internally by
// the repository layer; handlers define separate response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Username     – display name, unique.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleCustomer or RoleManager.
//  Name         – first name.
//  Surname      – family name.
//  PhoneNumber  – contact phone, optional.
//  Birthdate    – date of birth, optional.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	Name         string     // users.name
	Surname      string     // users.surname
	PhoneNumber  string     // users.phone_number
	Birthdate    *time.Time // users.birthdate (nullable)
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Customer is the booking-capable variant of a user.  The reservation
// engine requires a *Customer, never a bare User, so role enforcement is
// a typed lookup instead of a runtime cast.
//
// Fields:
//  User          – embedded common account fields.
//  PaymentMethod – saved card reference, nil when none is on file.
//  FavoriteIDs   – property IDs the customer has favored.
type Customer struct {
	User
	PaymentMethod *PaymentMethod // users.pm_* columns (nullable group)
	FavoriteIDs   []uint64       // favorites.property_id rows
}

// Manager is the property-owning variant of a user.  Managers receive
// booking notifications and payouts; they never hold a payment method.
//
// Fields:
//  User           – embedded common account fields.
//  IBAN           – payout account.
//  VATNumber      – business tax identification number.
//  BillingAddress – official billing address for tax documents.
type Manager struct {
	User
	IBAN           string // users.iban
	VATNumber      string // users.vat_number
	BillingAddress string // users.billing_address
}

// PaymentMethod is the tokenized reference to a customer's stored card.
// Only the last four digits are kept for display; the opaque gateway
// token is what the payment gateway charges and refunds.  Raw card
// numbers and CVVs are never persisted.
//
// Fields:
//  ID           – internal identifier of the saved method.
//  CardType     – e.g. "VISA", "MASTERCARD".
//  Last4Digits  – final four digits of the card number.
//  ExpiryDate   – "MM/yy" expiry as entered.
//  HolderName   – name printed on the card.
//  GatewayToken – opaque token issued at tokenization time.
type PaymentMethod struct {
	ID           string // users.pm_id
	CardType     string // users.pm_card_type
	Last4Digits  string // users.pm_last4
	ExpiryDate   string // users.pm_expiry
	HolderName   string // users.pm_holder_name
	GatewayToken string // users.pm_gateway_token
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
