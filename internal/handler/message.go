package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
	"github.com/lrotelli01/largebnb/internal/service"
)

// MessageHandler handles direct messages between customers and
// managers. Sending a message also drops a notification for the
// recipient.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Users    *repository.UserRepo
	Notifier *service.Notifier
}

func NewMessageHandler(m *repository.MessageRepo, u *repository.UserRepo, n *service.Notifier) *MessageHandler {
	return &MessageHandler{Messages: m, Users: u, Notifier: n}
}

type sendMessageReq struct {
	RecipientID uint64 `json:"recipient_id"`
	Content     string `json:"content"`
}

// Send delivers a message to another user.
func (h *MessageHandler) Send(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	content := strings.TrimSpace(req.Content)
	if req.RecipientID == 0 || content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_id and content required"})
	}
	if req.RecipientID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.RecipientID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient not found"})
	}

	msg := &model.Message{SenderID: uid, RecipientID: req.RecipientID, Content: content}
	if err := h.Messages.Create(ctx, msg); err != nil {
		return httpError(c, err)
	}
	if h.Notifier != nil {
		h.Notifier.MessageReceived(ctx, req.RecipientID, uid, msg.ID)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": msg.ID})
}

// Conversation returns the thread with another user and marks their
// messages as read.
func (h *MessageHandler) Conversation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	otherID, err := paramUint(c, "userID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.Conversation(ctx, uid, otherID)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.Messages.MarkConversationRead(ctx, uid, otherID); err != nil {
		c.Logger().Warnf("mark read failed: %v", err)
	}

	type entry struct {
		ID        uint64 `json:"id"`
		SenderID  uint64 `json:"sender_id"`
		Content   string `json:"content"`
		IsRead    bool   `json:"is_read"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]entry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, entry{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// Partners lists the users the caller has conversations with.
func (h *MessageHandler) Partners(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Messages.Partners(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	type entry struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	}
	out := make([]entry, 0, len(ids))
	for _, id := range ids {
		u, err := h.Users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, entry{ID: u.ID, Name: strings.TrimSpace(u.Name + " " + u.Surname), Role: u.Role})
	}
	unread, err := h.Messages.UnreadCount(ctx, uid)
	if err != nil {
		unread = 0
	}
	return c.JSON(http.StatusOK, echo.Map{"partners": out, "unread": unread})
}
