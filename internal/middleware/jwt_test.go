package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrotelli01/largebnb/internal/utils"
)

const testSecret = "unit-test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c), "role": c.Get("role")})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 15)
	require.NoError(t, err)

	rec := doRequest(t, JWTAuth(testSecret, nil), "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":42`)
	assert.Contains(t, rec.Body.String(), `"role":"CUSTOMER"`)
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	mw := JWTAuth(testSecret, nil)

	rec := doRequest(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, mw, "Basic abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, mw, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 42, "CUSTOMER", 15)
	require.NoError(t, err)

	rec := doRequest(t, JWTAuth(testSecret, nil), "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", -5)
	require.NoError(t, err)

	rec := doRequest(t, JWTAuth(testSecret, nil), "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	run := func(role any, allowed ...string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		require.NoError(t, RequireRole(allowed...)(okHandler)(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run("MANAGER", "MANAGER").Code)
	assert.Equal(t, http.StatusOK, run("CUSTOMER", "CUSTOMER", "MANAGER").Code)
	assert.Equal(t, http.StatusForbidden, run("CUSTOMER", "MANAGER").Code)
	assert.Equal(t, http.StatusForbidden, run(nil, "MANAGER").Code)
	assert.Equal(t, http.StatusForbidden, run(123, "MANAGER").Code)
}

func TestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, uint64(0), UserID(c))

	c.Set("user_id", float64(7))
	assert.Equal(t, uint64(7), UserID(c))

	c.Set("user_id", uint64(9))
	assert.Equal(t, uint64(9), UserID(c))
}
