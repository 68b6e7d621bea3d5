package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/repository"
)

// RecommendationHandler suggests properties to a customer. The primary
// signal is collaborative: properties booked by users who booked the
// same places, read from the booking_edges projection. When the graph
// yields nothing the handler falls back to content-based matches (same
// city as recently viewed listings) and finally to trending.
type RecommendationHandler struct {
	Graph      *repository.GraphRepo
	Properties *repository.PropertyRepo
	Trending   *repository.TrendingRepo
}

func NewRecommendationHandler(g *repository.GraphRepo, p *repository.PropertyRepo, t *repository.TrendingRepo) *RecommendationHandler {
	return &RecommendationHandler{Graph: g, Properties: p, Trending: t}
}

const recommendationLimit = 10

// ForUser returns up to ten recommended properties for the caller.
func (h *RecommendationHandler) ForUser(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	booked, err := h.Graph.BookedPropertyIDs(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	bookedSet := make(map[uint64]bool, len(booked))
	for _, id := range booked {
		bookedSet[id] = true
	}

	seen := make(map[uint64]bool)
	ids := make([]uint64, 0, recommendationLimit)
	add := func(id uint64) {
		if len(ids) < recommendationLimit && !seen[id] && !bookedSet[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	// Collaborative pass over the user's booked properties.
	for _, propertyID := range booked {
		if len(ids) >= recommendationLimit {
			break
		}
		related, err := h.Graph.Collaborative(ctx, propertyID, recommendationLimit)
		if err != nil {
			return httpError(c, err)
		}
		for _, id := range related {
			add(id)
		}
	}

	// Content-based pass: other listings in the cities the user has
	// been looking at recently.
	if len(ids) < recommendationLimit && h.Trending != nil {
		viewed, err := h.Trending.History(ctx, uid, 5)
		if err == nil {
			for _, viewedID := range viewed {
				if len(ids) >= recommendationLimit {
					break
				}
				similar, err := h.similarTo(ctx, viewedID)
				if err != nil {
					continue
				}
				for _, id := range similar {
					if id != viewedID {
						add(id)
					}
				}
			}
		}
	}

	// Cold start: trending.
	if len(ids) < recommendationLimit && h.Trending != nil {
		if top, err := h.Trending.Top(ctx, recommendationLimit); err == nil {
			for _, id := range top {
				add(id)
			}
		}
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

// similarTo returns properties in the same city as the given one,
// ordered by how many amenities they share with it. Zero-overlap
// matches still qualify; same city alone is a weak positive signal.
func (h *RecommendationHandler) similarTo(ctx context.Context, propertyID uint64) ([]uint64, error) {
	prop, _, err := h.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(prop.Amenities))
	for _, a := range prop.Amenities {
		wanted[a] = true
	}

	matches, err := h.Properties.Search(ctx, repository.SearchFilter{City: prop.City})
	if err != nil {
		return nil, err
	}

	type scored struct {
		id      uint64
		overlap int
	}
	ranked := make([]scored, 0, len(matches))
	for _, m := range matches {
		s := scored{id: m.ID}
		for _, a := range m.Amenities {
			if wanted[a] {
				s.overlap++
			}
		}
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].overlap > ranked[j].overlap })

	ids := make([]uint64, 0, len(ranked))
	for _, s := range ranked {
		ids = append(ids, s.id)
	}
	return ids, nil
}
