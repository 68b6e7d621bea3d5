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

// ReviewHandler manages property reviews. A customer may review only a
// stay of their own that has ended, and only once per reservation.
// Each new review recomputes the property's aggregate rating.
type ReviewHandler struct {
	Reviews      *repository.ReviewRepo
	Reservations *repository.ReservationRepo
	Properties   *repository.PropertyRepo
}

func NewReviewHandler(rv *repository.ReviewRepo, rs *repository.ReservationRepo, p *repository.PropertyRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: rv, Reservations: rs, Properties: p}
}

type reviewReq struct {
	ReservationID string  `json:"reservation_id"`
	Rating        int     `json:"rating"`
	Cleanliness   float64 `json:"cleanliness"`
	Communication float64 `json:"communication"`
	Location      float64 `json:"location"`
	Value         float64 `json:"value"`
	Text          string  `json:"text"`
}

type reviewPart struct {
	ID            uint64  `json:"id"`
	PropertyID    uint64  `json:"property_id"`
	UserID        uint64  `json:"user_id"`
	Rating        int     `json:"rating"`
	Cleanliness   float64 `json:"cleanliness"`
	Communication float64 `json:"communication"`
	Location      float64 `json:"location"`
	Value         float64 `json:"value"`
	Text          string  `json:"text"`
	ManagerReply  string  `json:"manager_reply,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toReviewPart(rv *model.Review) reviewPart {
	p := reviewPart{
		ID:            rv.ID,
		PropertyID:    rv.PropertyID,
		UserID:        rv.UserID,
		Rating:        rv.Rating,
		Cleanliness:   rv.Cleanliness,
		Communication: rv.Communication,
		Location:      rv.Location,
		Value:         rv.Value,
		Text:          rv.Text,
		CreatedAt:     rv.CreatedAt.Format(time.RFC3339),
	}
	if rv.ManagerReply != nil {
		p.ManagerReply = *rv.ManagerReply
	}
	return p
}

func validSubScore(v float64) bool { return v >= 1 && v <= 5 }

// Create posts a review for one of the caller's past stays.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5"})
	}
	if !validSubScore(req.Cleanliness) || !validSubScore(req.Communication) ||
		!validSubScore(req.Location) || !validSubScore(req.Value) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sub-scores must be 1-5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.FindByID(ctx, strings.TrimSpace(req.ReservationID))
	if err != nil {
		return httpError(c, err)
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if res.Status == model.StatusCancelled {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cancelled stays cannot be reviewed"})
	}
	if res.CheckOut.After(time.Now().UTC()) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "stay has not ended yet"})
	}

	prop, err := h.Properties.FindPropertyByRoom(ctx, res.RoomID)
	if err != nil {
		return httpError(c, err)
	}

	rv := &model.Review{
		ReservationID: res.ID,
		PropertyID:    prop.ID,
		UserID:        uid,
		Rating:        req.Rating,
		Cleanliness:   req.Cleanliness,
		Communication: req.Communication,
		Location:      req.Location,
		Value:         req.Value,
		Text:          req.Text,
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if err == repository.ErrReviewExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already reviewed"})
		}
		return httpError(c, err)
	}

	// Refresh the denormalized rating on the listing.
	if avg, count, err := h.Reviews.AggregateForProperty(ctx, prop.ID); err == nil {
		if err := h.Properties.UpdateRatingStats(ctx, prop.ID, avg, count); err != nil {
			c.Logger().Warnf("rating refresh failed: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": rv.ID})
}

// ListByProperty returns a property's reviews.
func (h *ReviewHandler) ListByProperty(c echo.Context) error {
	propertyID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reviews, err := h.Reviews.ListByProperty(ctx, propertyID)
	if err != nil {
		return httpError(c, err)
	}
	out := make([]reviewPart, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewPart(&reviews[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": out})
}

// Reply stores the manager's reply on a review of one of their
// properties.
func (h *ReviewHandler) Reply(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, err := paramUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var req struct {
		Reply string `json:"reply"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reply) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reply required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Reviews.FindByID(ctx, reviewID)
	if err != nil {
		return httpError(c, err)
	}
	prop, _, err := h.Properties.GetByID(ctx, rv.PropertyID)
	if err != nil {
		return httpError(c, err)
	}
	if prop.ManagerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Reviews.SetManagerReply(ctx, reviewID, strings.TrimSpace(req.Reply)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
