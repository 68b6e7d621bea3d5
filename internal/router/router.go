package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/handler"
	"github.com/lrotelli01/largebnb/internal/middleware"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, sessions *repository.SessionRepo) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret, sessions))
	auth.GET("/me", a.Me)
	auth.DELETE("/me", a.DeleteAccount)
	// Logout blacklists the presented access token and revokes refresh
	// tokens, so it needs the JWT middleware.
	auth.POST("/auth/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints: property
// search, listing detail, reviews and trending.  These routes apply no
// JWT or role middleware and are intended for guest users; the optional
// cache middleware is attached by the caller.
func RegisterPublic(e *echo.Echo, p *handler.PropertyHandler, rv *handler.ReviewHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Browse and filter the catalog
	g.GET("/properties", p.Search)
	// Most viewed listings first; registered before /properties/:id so
	// Echo does not swallow "trending" as an id.
	g.GET("/properties/trending", p.TrendingList)
	// Listing detail with rooms; each view feeds the trending counters
	g.GET("/properties/:id", p.Detail)
	// Reviews of a listing
	g.GET("/properties/:id/reviews", rv.ListByProperty)
}

// RegisterShared registers endpoints available to both roles:
// messaging between customers and managers, and the notification feed.
func RegisterShared(e *echo.Echo, msg *handler.MessageHandler, notif *handler.NotificationHandler, jwtSecret string, sessions *repository.SessionRepo) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret, sessions),
		middleware.RequireRole(model.RoleCustomer, model.RoleManager),
	)

	g.POST("/messages", msg.Send)
	g.GET("/messages", msg.Partners)
	g.GET("/messages/:userID", msg.Conversation)

	g.GET("/notifications", notif.List)
	g.POST("/notifications/:id/read", notif.MarkRead)
	g.POST("/notifications/read-all", notif.MarkAllRead)
}
