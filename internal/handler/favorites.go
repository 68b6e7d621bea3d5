package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/repository"
)

// FavoritesHandler manages a customer's saved properties.
type FavoritesHandler struct {
	Users      *repository.UserRepo
	Properties *repository.PropertyRepo
}

func NewFavoritesHandler(u *repository.UserRepo, p *repository.PropertyRepo) *FavoritesHandler {
	return &FavoritesHandler{Users: u, Properties: p}
}

// Add saves a property to the caller's favorites.
func (h *FavoritesHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Properties.GetByID(ctx, propertyID); err != nil {
		return httpError(c, err)
	}
	if err := h.Users.AddFavorite(ctx, uid, propertyID); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove drops a property from the caller's favorites.
func (h *FavoritesHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.RemoveFavorite(ctx, uid, propertyID); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's favorite properties.
func (h *FavoritesHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Users.ListFavorites(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	props, err := h.Properties.GetManyByID(ctx, ids)
	if err != nil {
		return httpError(c, err)
	}
	out := make([]propertyPart, 0, len(props))
	for i := range props {
		out = append(out, toPropertyPart(&props[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": out})
}
