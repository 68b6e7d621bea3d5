package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrotelli01/largebnb/internal/booking"
	"github.com/lrotelli01/largebnb/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHTTPErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad dates", booking.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: not yours", booking.ErrForbidden), http.StatusForbidden},
		{repository.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: room 5", booking.ErrNotFound), http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: already booked", booking.ErrConflict), http.StatusConflict},
		{repository.ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: hold expired", booking.ErrState), http.StatusUnprocessableEntity},
		{repository.ErrNotCustomer, http.StatusForbidden},
		{fmt.Errorf("driver: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := newTestContext(t)
		require.NoError(t, httpError(c, tc.err))
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestHTTPErrorHidesInternalDetails(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, httpError(c, fmt.Errorf("dial tcp 10.0.0.5:3306: timeout")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestValidateCard(t *testing.T) {
	assert.Empty(t, validateCard("4242424242424242", "12/29", "123"))
	assert.Empty(t, validateCard("378282246310005", "01/30", "1234"))

	assert.NotEmpty(t, validateCard("424242424242", "12/29", "123"), "too short")
	assert.NotEmpty(t, validateCard("42424242424242424242", "12/29", "123"), "too long")
	assert.NotEmpty(t, validateCard("4242abcd42424242", "12/29", "123"), "non-digits")
	assert.NotEmpty(t, validateCard("4242424242424242", "13/29", "123"), "bad month")
	assert.NotEmpty(t, validateCard("4242424242424242", "2029-12", "123"), "bad format")
	assert.NotEmpty(t, validateCard("4242424242424242", "01/20", "123"), "expired")
	assert.NotEmpty(t, validateCard("4242424242424242", "12/29", "12"), "cvv short")
	assert.NotEmpty(t, validateCard("4242424242424242", "12/29", "12345"), "cvv long")
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("15/09/2026")
	assert.Error(t, err)

	_, err = parseDate("")
	assert.Error(t, err)
}
