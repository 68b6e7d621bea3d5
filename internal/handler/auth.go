package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/config"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
	"github.com/lrotelli01/largebnb/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Tokens       *repository.TokenRepo
	Sessions     *repository.SessionRepo
	Reservations *repository.ReservationRepo
	Graph        *repository.GraphRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s *repository.SessionRepo, res *repository.ReservationRepo, g *repository.GraphRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Sessions: s, Reservations: res, Graph: g}
}

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"` // CUSTOMER | MANAGER
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	PhoneNumber string `json:"phone_number"`
	Birthdate   string `json:"birthdate"` // YYYY-MM-DD, optional
	IBAN        string `json:"iban"`      // managers only
	VATNumber   string `json:"vat_number"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a customer or manager account and returns tokens
// immediately. Manager registrations must carry billing data.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleManager && role != model.RoleCustomer {
		role = model.RoleCustomer
	}
	if role == model.RoleManager && (req.IBAN == "" || req.VATNumber == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "iban/vat_number required for managers"})
	}

	acc := repository.NewAccount{
		Email:       req.Email,
		Username:    strings.TrimSpace(req.Username),
		Password:    req.Password,
		Role:        role,
		Name:        strings.TrimSpace(req.Name),
		Surname:     strings.TrimSpace(req.Surname),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		IBAN:        req.IBAN,
		VATNumber:   req.VATNumber,
	}
	if req.Birthdate != "" {
		bd, err := parseDate(req.Birthdate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid birthdate"})
		}
		acc.Birthdate = &bd
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, acc, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Email: req.Email, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh validates the presented refresh token by hash and rotates it,
// issuing a fresh pair. Rotation is transactional so the old and new
// hashes can never both be live.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.Rotate(ctx, userID, hash, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: userID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes the caller's sessions: the presented access token is
// blacklisted for its remaining lifetime, and either the specific
// refresh token from the body or all of the user's refresh tokens are
// revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Blacklist the current access token so it stops working now,
	// not at its natural expiry.
	if raw, ok := c.Get("token").(string); ok && raw != "" {
		if exp, ok := c.Get("token_exp").(time.Time); ok && !exp.IsZero() {
			if err := h.Sessions.Blacklist(ctx, raw, exp); err != nil {
				c.Logger().Warnf("blacklist failed: %v", err)
			}
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// hasBlockingStay reports whether any reservation is still live at or
// after today: not cancelled, with a check-out past the given day.
// Completed and cancelled stays never block.
func hasBlockingStay(stays []model.Reservation, today time.Time) bool {
	for _, s := range stays {
		if s.Status == model.StatusCancelled {
			continue
		}
		if s.CheckOut.After(today) {
			return true
		}
	}
	return false
}

// DeleteAccount removes the caller's account. Refused while the user
// still has an active or future reservation; the client must cancel
// those first. On success the presented access token is blacklisted,
// all refresh tokens revoked, and the user's recommendation edges
// dropped.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stays, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservations failed"})
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if hasBlockingStay(stays, today) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "account has active or future reservations"})
	}

	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
	}
	if raw, ok := c.Get("token").(string); ok && raw != "" {
		if exp, ok := c.Get("token_exp").(time.Time); ok && !exp.IsZero() {
			if err := h.Sessions.Blacklist(ctx, raw, exp); err != nil {
				c.Logger().Warnf("blacklist failed: %v", err)
			}
		}
	}

	// Recommendation edges are a derived projection; losing a delete
	// here is recoverable via a rebuild, so it does not abort.
	if err := h.Graph.DeleteByUser(ctx, uid); err != nil {
		c.Logger().Warnf("graph cleanup for user %d failed: %v", uid, err)
	}

	if err := h.Users.Delete(ctx, uid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	resp := echo.Map{
		"id":           u.ID,
		"email":        u.Email,
		"username":     u.Username,
		"role":         u.Role,
		"name":         u.Name,
		"surname":      u.Surname,
		"phone_number": u.PhoneNumber,
	}
	if u.Birthdate != nil {
		resp["birthdate"] = u.Birthdate.Format(time.DateOnly)
	}

	// Role-specific profile sections.
	switch u.Role {
	case model.RoleManager:
		if m, err := h.Users.FindManager(ctx, uid); err == nil {
			resp["iban"] = m.IBAN
			resp["vat_number"] = m.VATNumber
			resp["billing_address"] = m.BillingAddress
		}
	case model.RoleCustomer:
		if cust, err := h.Users.FindCustomer(ctx, uid); err == nil {
			if favs, err := h.Users.ListFavorites(ctx, uid); err == nil {
				resp["favorite_ids"] = favs
			}
			if pm := cust.PaymentMethod; pm != nil {
				resp["payment_method"] = echo.Map{
					"card_type":    pm.CardType,
					"last4_digits": pm.Last4Digits,
					"expiry_date":  pm.ExpiryDate,
				}
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}
