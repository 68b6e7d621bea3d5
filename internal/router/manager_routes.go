package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/handler"
	"github.com/lrotelli01/largebnb/internal/middleware"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// ManagerHandlers bundles the handlers mounted on the manager group.
type ManagerHandlers struct {
	Properties   *handler.ManagerPropertyHandler
	Reservations *handler.ManagerReservationHandler
	Reviews      *handler.ReviewHandler
}

// RegisterManager registers manager-scoped endpoints under /v1/manager.
// All routes require a valid JWT and the MANAGER role.  Managers
// maintain their listings and rooms, read the bookings on them and
// reply to reviews; they never mutate reservations themselves.
func RegisterManager(e *echo.Echo, h ManagerHandlers, jwtSecret string, sessions *repository.SessionRepo) {
	g := e.Group(
		"/v1/manager",
		middleware.JWTAuth(jwtSecret, sessions),
		middleware.RequireRole(model.RoleManager),
	)

	// Listing and room management
	g.POST("/properties", h.Properties.CreateProperty)
	g.GET("/properties", h.Properties.ListProperties)
	g.PUT("/properties/:id", h.Properties.UpdateProperty)
	g.DELETE("/properties/:id", h.Properties.DeleteProperty)
	g.POST("/properties/:id/rooms", h.Properties.CreateRoom)
	g.PUT("/properties/:id/rooms/:roomID", h.Properties.UpdateRoom)
	g.DELETE("/properties/:id/rooms/:roomID", h.Properties.DeleteRoom)

	// Booking visibility and analytics
	g.GET("/reservations", h.Reservations.List)
	g.GET("/analytics", h.Reservations.Analytics)

	// Review replies
	g.POST("/reviews/:id/reply", h.Reviews.Reply)
}
