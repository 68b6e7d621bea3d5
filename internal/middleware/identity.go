package middleware

// identity.go defines helper functions shared across middleware files. The
// rate limiter and response cache use userID to build per-user keys; when
// no user is authenticated the requests share the "guest" bucket.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts the authenticated user's identifier from the context as a
// string. It returns "guest" for unauthenticated requests.
func userID(c echo.Context) string {
	if id := UserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
