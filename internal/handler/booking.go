package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/booking"
)

// BookingHandler exposes the reservation lifecycle: hold, confirm,
// release, modify, cancel and list. All money and availability rules
// live in the engine; the handler only translates HTTP to engine calls.
type BookingHandler struct {
	Engine *booking.Engine
}

func NewBookingHandler(e *booking.Engine) *BookingHandler {
	if e == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: e}
}

type bookingReq struct {
	PropertyID uint64 `json:"property_id"`
	RoomID     uint64 `json:"room_id"`
	CheckIn    string `json:"check_in"`  // YYYY-MM-DD
	CheckOut   string `json:"check_out"` // YYYY-MM-DD
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
}

type bookingResp struct {
	ID         string  `json:"id"`
	PropertyID uint64  `json:"property_id"`
	RoomID     uint64  `json:"room_id"`
	RoomName   string  `json:"room_name,omitempty"`
	Status     string  `json:"status"`
	Adults     int     `json:"adults"`
	Children   int     `json:"children"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	TotalPrice float64 `json:"total_price"`
	Message    string  `json:"message,omitempty"`
}

func toBookingResp(r *booking.BookingResult) bookingResp {
	return bookingResp{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		RoomID:     r.RoomID,
		RoomName:   r.RoomName,
		Status:     r.Status,
		Adults:     r.Adults,
		Children:   r.Children,
		CheckIn:    r.CheckIn.Format(time.DateOnly),
		CheckOut:   r.CheckOut.Format(time.DateOnly),
		TotalPrice: booking.Round2(r.TotalPrice),
		Message:    r.Message,
	}
}

func (h *BookingHandler) bindRequest(c echo.Context) (booking.BookingRequest, error) {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return booking.BookingRequest{}, err
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return booking.BookingRequest{}, err
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return booking.BookingRequest{}, err
	}
	return booking.BookingRequest{
		PropertyID: req.PropertyID,
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     req.Adults,
		Children:   req.Children,
	}, nil
}

// Hold starts the two-phase booking: it places a temporary hold on the
// room and returns the quoted price plus the payment deadline.
func (h *BookingHandler) Hold(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	req, err := h.bindRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Engine.InitiateHold(c.Request().Context(), uid, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(res))
}

// Confirm charges the saved payment method and converts the hold into
// a durable confirmed reservation.
func (h *BookingHandler) Confirm(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Engine.ConfirmPayment(c.Request().Context(), uid, c.Param("holdID"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(res))
}

// Release frees a hold before its TTL runs out.
func (h *BookingHandler) Release(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Engine.ReleaseHold(c.Request().Context(), uid, c.Param("holdID")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Modify re-prices an existing reservation, charging or refunding the
// difference.
func (h *BookingHandler) Modify(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	req, err := h.bindRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Engine.Modify(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(res))
}

// Cancel cancels a confirmed reservation and refunds the full amount.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), uid, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's reservations.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	results, err := h.Engine.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	out := make([]bookingResp, 0, len(results))
	for i := range results {
		out = append(out, toBookingResp(&results[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}
