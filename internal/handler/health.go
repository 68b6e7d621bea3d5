package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness for load balancers and monitoring.
// It deliberately touches no backing store: a degraded MySQL or Redis
// surfaces through the endpoints that use them, not here.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
