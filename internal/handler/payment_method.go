package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/payment"
	"github.com/lrotelli01/largebnb/internal/repository"
	"github.com/lrotelli01/largebnb/internal/utils"
)

// PaymentMethodHandler manages the customer's single saved card. Card
// numbers are tokenized at the gateway and only the token plus display
// data (brand, last four digits) are stored.
type PaymentMethodHandler struct {
	Users     *repository.UserRepo
	Tokenizer payment.Tokenizer
}

func NewPaymentMethodHandler(u *repository.UserRepo, t payment.Tokenizer) *PaymentMethodHandler {
	return &PaymentMethodHandler{Users: u, Tokenizer: t}
}

type addCardReq struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"` // MM/YY
	HolderName string `json:"holder_name"`
	CVV        string `json:"cvv"`
}

// Add tokenizes and saves the card, replacing any previous one.
func (h *PaymentMethodHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addCardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	digits := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	if msg := validateCard(digits, req.ExpiryDate, req.CVV); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	token, err := h.Tokenizer.Tokenize(ctx, digits, req.ExpiryDate, req.HolderName)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "card could not be verified"})
	}
	info := payment.DeriveCardInfo(digits, req.ExpiryDate, req.HolderName)

	pmID, err := utils.NewID()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	pm := &model.PaymentMethod{
		ID:           pmID,
		CardType:     info.CardType,
		Last4Digits:  info.Last4,
		ExpiryDate:   info.Expiry,
		HolderName:   info.HolderName,
		GatewayToken: token,
	}
	if err := h.Users.SetPaymentMethod(ctx, uid, pm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          pm.ID,
		"card_type":   pm.CardType,
		"last4":       pm.Last4Digits,
		"expiry_date": pm.ExpiryDate,
	})
}

// validateCard enforces the card format rules: 13 to 19 digit PAN,
// 3 or 4 digit CVV, MM/YY expiry that is not in the past. It returns an
// empty string when the card is acceptable.
func validateCard(digits, expiry, cvv string) string {
	if n := len(digits); n < 13 || n > 19 || !allDigits(digits) {
		return "card_number must be 13-19 digits"
	}
	if n := len(cvv); n < 3 || n > 4 || !allDigits(cvv) {
		return "cvv must be 3-4 digits"
	}
	exp, err := time.Parse("01/06", expiry)
	if err != nil {
		return "expiry_date must be MM/YY"
	}
	// Valid through the last day of the expiry month.
	if exp.AddDate(0, 1, 0).Before(time.Now()) {
		return "card is expired"
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Get returns the saved card's display data.
func (h *PaymentMethodHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cust, err := h.Users.FindCustomer(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	if cust.PaymentMethod == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no payment method on file"})
	}
	pm := cust.PaymentMethod
	return c.JSON(http.StatusOK, echo.Map{
		"id":          pm.ID,
		"card_type":   pm.CardType,
		"last4":       pm.Last4Digits,
		"expiry_date": pm.ExpiryDate,
		"holder_name": pm.HolderName,
	})
}

// Delete removes the saved card.
func (h *PaymentMethodHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.ClearPaymentMethod(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
