package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/middleware"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// PropertyHandler serves the public catalog: search, listing detail,
// trending and per-user view history. Detail views feed the trending
// counters; failures there never fail the request.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
	Trending   *repository.TrendingRepo
}

func NewPropertyHandler(p *repository.PropertyRepo, t *repository.TrendingRepo) *PropertyHandler {
	return &PropertyHandler{Properties: p, Trending: t}
}

type propertyPart struct {
	ID          uint64                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	City        string                  `json:"city"`
	Region      string                  `json:"region,omitempty"`
	Country     string                  `json:"country"`
	Amenities   []string                `json:"amenities,omitempty"`
	Photos      []string                `json:"photos,omitempty"`
	Pois        []model.PointOfInterest `json:"pois,omitempty"`
	RatingAvg   float64                 `json:"rating_avg"`
	RatingCount uint32                  `json:"rating_count"`
}

type roomPart struct {
	ID               uint64   `json:"id"`
	Name             string   `json:"name"`
	RoomType         string   `json:"room_type"`
	Beds             uint16   `json:"beds"`
	Status           string   `json:"status"`
	CapacityAdults   int      `json:"capacity_adults"`
	CapacityChildren int      `json:"capacity_children"`
	PriceAdults      float64  `json:"price_per_night_adults"`
	PriceChildren    float64  `json:"price_per_night_children"`
	Amenities        []string `json:"amenities,omitempty"`
	Photos           []string `json:"photos,omitempty"`
}

func toPropertyPart(p *model.Property) propertyPart {
	return propertyPart{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		City:        p.City,
		Region:      p.Region,
		Country:     p.Country,
		Amenities:   p.Amenities,
		Photos:      p.Photos,
		Pois:        p.Pois,
		RatingAvg:   p.RatingAvg,
		RatingCount: p.RatingCount,
	}
}

func toRoomPart(rm *model.Room) roomPart {
	return roomPart{
		ID:               rm.ID,
		Name:             rm.Name,
		RoomType:         rm.RoomType,
		Beds:             rm.Beds,
		Status:           rm.Status,
		CapacityAdults:   rm.CapacityAdults,
		CapacityChildren: rm.CapacityChildren,
		PriceAdults:      rm.PricePerNightAdults,
		PriceChildren:    rm.PricePerNightChildren,
		Amenities:        rm.Amenities,
		Photos:           rm.Photos,
	}
}

// Search filters the catalog by city, country, guest count and price.
func (h *PropertyHandler) Search(c echo.Context) error {
	f := repository.SearchFilter{
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
	}
	if v := c.QueryParam("adults"); v != "" {
		f.Adults, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("children"); v != "" {
		f.Children, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("max_price"); v != "" {
		f.MaxAdultPrice, _ = strconv.ParseFloat(v, 64)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	props, err := h.Properties.Search(ctx, f)
	if err != nil {
		return httpError(c, err)
	}
	out := make([]propertyPart, 0, len(props))
	for i := range props {
		out = append(out, toPropertyPart(&props[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": out})
}

// Detail returns a property with its rooms and records the view.
func (h *PropertyHandler) Detail(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prop, rooms, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}

	// Best effort: a Redis outage must not break the detail page.
	if h.Trending != nil {
		if err := h.Trending.RecordView(ctx, id, middleware.UserID(c)); err != nil {
			c.Logger().Warnf("record view failed: %v", err)
		}
	}

	roomParts := make([]roomPart, 0, len(rooms))
	for i := range rooms {
		roomParts = append(roomParts, toRoomPart(&rooms[i]))
	}
	resp := toPropertyPart(prop)
	return c.JSON(http.StatusOK, echo.Map{
		"property": resp,
		"address":  prop.Address,
		"email":    prop.Email,
		"rooms":    roomParts,
	})
}

// TrendingList returns the most viewed properties.
func (h *PropertyHandler) TrendingList(c echo.Context) error {
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Trending.Top(ctx, limit)
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

// History returns the caller's recently viewed properties.
func (h *PropertyHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Trending.History(ctx, uid, 20)
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
