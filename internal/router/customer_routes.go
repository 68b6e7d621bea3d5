package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/handler"
	"github.com/lrotelli01/largebnb/internal/middleware"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// CustomerHandlers bundles the handlers mounted on the customer group.
type CustomerHandlers struct {
	Booking         *handler.BookingHandler
	PaymentMethods  *handler.PaymentMethodHandler
	Reviews         *handler.ReviewHandler
	Favorites       *handler.FavoritesHandler
	Recommendations *handler.RecommendationHandler
	History         *handler.PropertyHandler
}

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers drive
// the whole booking lifecycle: place a hold, confirm it by paying,
// release it, modify or cancel a confirmed reservation, and manage the
// card the charges run against.
func RegisterCustomer(e *echo.Echo, h CustomerHandlers, jwtSecret string, sessions *repository.SessionRepo, ratelimit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret, sessions),
		middleware.RequireRole(model.RoleCustomer),
	)
	if ratelimit != nil {
		g.Use(ratelimit)
	}

	// Two-phase booking: hold then confirm within the payment window.
	g.POST("/bookings/hold", h.Booking.Hold)
	g.POST("/bookings/hold/:holdID/confirm", h.Booking.Confirm)
	g.DELETE("/bookings/hold/:holdID", h.Booking.Release)
	g.GET("/my-reservations", h.Booking.List)
	g.PUT("/reservations/:id", h.Booking.Modify)
	g.DELETE("/reservations/:id", h.Booking.Cancel)

	// Saved card management
	g.POST("/payment-method", h.PaymentMethods.Add)
	g.GET("/payment-method", h.PaymentMethods.Get)
	g.DELETE("/payment-method", h.PaymentMethods.Delete)

	// Reviews of completed stays
	g.POST("/reviews", h.Reviews.Create)

	// Favorites
	g.POST("/favorites/:id", h.Favorites.Add)
	g.DELETE("/favorites/:id", h.Favorites.Remove)
	g.GET("/favorites", h.Favorites.List)

	// Personalization
	g.GET("/recommendations", h.Recommendations.ForUser)
	g.GET("/history", h.History.History)
}
