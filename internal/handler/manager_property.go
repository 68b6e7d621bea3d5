package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// ManagerPropertyHandler lets managers maintain their listings and
// rooms. Every mutation verifies ownership in the repository layer.
type ManagerPropertyHandler struct {
	Properties *repository.PropertyRepo
}

func NewManagerPropertyHandler(p *repository.PropertyRepo) *ManagerPropertyHandler {
	return &ManagerPropertyHandler{Properties: p}
}

type propertyReq struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Address     string                  `json:"address"`
	City        string                  `json:"city"`
	Region      string                  `json:"region"`
	Country     string                  `json:"country"`
	Email       string                  `json:"email"`
	Latitude    float64                 `json:"latitude"`
	Longitude   float64                 `json:"longitude"`
	Amenities   []string                `json:"amenities"`
	Photos      []string                `json:"photos"`
	Pois        []model.PointOfInterest `json:"pois"`
}

type roomReq struct {
	Name             string   `json:"name"`
	RoomType         string   `json:"room_type"`
	Beds             uint16   `json:"beds"`
	Status           string   `json:"status"`
	CapacityAdults   int      `json:"capacity_adults"`
	CapacityChildren int      `json:"capacity_children"`
	PriceAdults      float64  `json:"price_per_night_adults"`
	PriceChildren    float64  `json:"price_per_night_children"`
	Amenities        []string `json:"amenities"`
	Photos           []string `json:"photos"`
}

func (r *propertyReq) toModel(managerID uint64) *model.Property {
	return &model.Property{
		ManagerID:   managerID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Address:     r.Address,
		City:        strings.TrimSpace(r.City),
		Region:      r.Region,
		Country:     strings.TrimSpace(r.Country),
		Email:       strings.TrimSpace(r.Email),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Amenities:   r.Amenities,
		Photos:      r.Photos,
		Pois:        r.Pois,
	}
}

func (r *roomReq) toModel(propertyID uint64) (*model.Room, string) {
	status := strings.ToLower(strings.TrimSpace(r.Status))
	if status == "" {
		status = model.RoomAvailable
	}
	if status != model.RoomAvailable && status != model.RoomMaintenance {
		return nil, "status must be available or maintenance"
	}
	if r.CapacityAdults < 1 {
		return nil, "capacity_adults must be at least 1"
	}
	if r.PriceAdults <= 0 || r.PriceChildren < 0 {
		return nil, "nightly rates must be positive"
	}
	return &model.Room{
		PropertyID:            propertyID,
		Name:                  strings.TrimSpace(r.Name),
		RoomType:              strings.TrimSpace(r.RoomType),
		Beds:                  r.Beds,
		Status:                status,
		CapacityAdults:        r.CapacityAdults,
		CapacityChildren:      r.CapacityChildren,
		PricePerNightAdults:   r.PriceAdults,
		PricePerNightChildren: r.PriceChildren,
		Amenities:             r.Amenities,
		Photos:                r.Photos,
	}, ""
}

// CreateProperty registers a new listing for the manager.
func (h *ManagerPropertyHandler) CreateProperty(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.City) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := req.toModel(uid)
	if err := h.Properties.Create(ctx, p); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID})
}

// UpdateProperty rewrites a listing the manager owns.
func (h *ManagerPropertyHandler) UpdateProperty(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := req.toModel(uid)
	p.ID = id
	if err := h.Properties.Update(ctx, uid, p); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProperty removes a listing without active reservations.
func (h *ManagerPropertyHandler) DeleteProperty(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.Delete(ctx, uid, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProperties returns the manager's own listings.
func (h *ManagerPropertyHandler) ListProperties(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	props, err := h.Properties.ListByManager(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	out := make([]propertyPart, 0, len(props))
	for i := range props {
		out = append(out, toPropertyPart(&props[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": out})
}

// CreateRoom adds a room to one of the manager's properties.
func (h *ManagerPropertyHandler) CreateRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rm, msg := req.toModel(propertyID)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.CreateRoom(ctx, uid, rm); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rm.ID})
}

// UpdateRoom rewrites a room, including status and nightly rates.
func (h *ManagerPropertyHandler) UpdateRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	roomID, err := paramUint(c, "roomID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rm, msg := req.toModel(propertyID)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	rm.ID = roomID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.UpdateRoom(ctx, uid, rm); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteRoom removes a room without active reservations.
func (h *ManagerPropertyHandler) DeleteRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	roomID, err := paramUint(c, "roomID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.DeleteRoom(ctx, uid, propertyID, roomID); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
