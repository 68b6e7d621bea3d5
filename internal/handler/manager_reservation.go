package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/booking"
	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// ManagerReservationHandler gives managers a read view over the
// bookings on their rooms plus aggregate analytics. Managers never
// mutate reservations; cancellation stays with the customer.
type ManagerReservationHandler struct {
	Properties   *repository.PropertyRepo
	Reservations *repository.ReservationRepo
}

func NewManagerReservationHandler(p *repository.PropertyRepo, r *repository.ReservationRepo) *ManagerReservationHandler {
	return &ManagerReservationHandler{Properties: p, Reservations: r}
}

func (h *ManagerReservationHandler) window(c echo.Context) (from, to time.Time, err error) {
	if v := c.QueryParam("from"); v != "" {
		if from, err = parseDate(v); err != nil {
			return
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = parseDate(v); err != nil {
			return
		}
	}
	return
}

// List returns the reservations on the manager's rooms, optionally
// restricted to a date window via ?from= and ?to=.
func (h *ManagerReservationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, to, err := h.window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	roomIDs, err := h.Properties.ListRoomIDsByManager(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	reservations, err := h.Reservations.ListByRoomIDs(ctx, roomIDs, from, to)
	if err != nil {
		return httpError(c, err)
	}

	type entry struct {
		ID       string `json:"id"`
		RoomID   uint64 `json:"room_id"`
		UserID   uint64 `json:"user_id"`
		Adults   int    `json:"adults"`
		Children int    `json:"children"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
		Status   string `json:"status"`
	}
	out := make([]entry, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, entry{
			ID:       r.ID,
			RoomID:   r.RoomID,
			UserID:   r.UserID,
			Adults:   r.Adults,
			Children: r.Children,
			CheckIn:  r.CheckIn.Format(time.DateOnly),
			CheckOut: r.CheckOut.Format(time.DateOnly),
			Status:   r.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Analytics aggregates the manager's bookings over a window: totals
// per status, revenue, nights sold, occupancy and cancellation rate.
// Revenue re-prices each stay from the room's current rates.
func (h *ManagerReservationHandler) Analytics(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, to, err := h.window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	if from.IsZero() {
		from = booking.DateOnly(time.Now().UTC().AddDate(0, -1, 0))
	}
	if to.IsZero() {
		to = booking.DateOnly(time.Now().UTC())
	}
	if !from.Before(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must precede to"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	props, err := h.Properties.ListByManager(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	rooms := make(map[uint64]*model.Room)
	roomIDs := make([]uint64, 0)
	for _, p := range props {
		list, err := h.Properties.ListRooms(ctx, p.ID)
		if err != nil {
			return httpError(c, err)
		}
		for i := range list {
			rm := list[i]
			rooms[rm.ID] = &rm
			roomIDs = append(roomIDs, rm.ID)
		}
	}

	reservations, err := h.Reservations.ListByRoomIDs(ctx, roomIDs, from, to)
	if err != nil {
		return httpError(c, err)
	}

	var (
		confirmed, cancelled, completed int
		revenue                         float64
		nightsSold                      int
	)
	for _, r := range reservations {
		switch r.Status {
		case model.StatusCancelled:
			cancelled++
			continue
		case model.StatusCompleted:
			completed++
		case model.StatusConfirmed:
			confirmed++
		default:
			continue
		}
		nights := booking.Nights(r.CheckIn, r.CheckOut)
		nightsSold += nights
		if rm, ok := rooms[r.RoomID]; ok {
			revenue += booking.TotalPrice(rm, r.CheckIn, r.CheckOut, r.Adults, r.Children)
		}
	}

	total := confirmed + cancelled + completed
	windowNights := int(to.Sub(from).Hours() / 24)
	capacityNights := windowNights * len(roomIDs)

	occupancy := 0.0
	if capacityNights > 0 {
		occupancy = float64(nightsSold) / float64(capacityNights)
	}
	cancellationRate := 0.0
	if total > 0 {
		cancellationRate = float64(cancelled) / float64(total)
	}
	avgStay := 0.0
	if sold := confirmed + completed; sold > 0 {
		avgStay = float64(nightsSold) / float64(sold)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"from":              from.Format(time.DateOnly),
		"to":                to.Format(time.DateOnly),
		"properties":        len(props),
		"rooms":             len(roomIDs),
		"reservations":      total,
		"confirmed":         confirmed,
		"completed":         completed,
		"cancelled":         cancelled,
		"nights_sold":       nightsSold,
		"revenue":           booking.Round2(revenue),
		"occupancy":         booking.Round2(occupancy),
		"cancellation_rate": booking.Round2(cancellationRate),
		"avg_stay_nights":   booking.Round2(avgStay),
	})
}
