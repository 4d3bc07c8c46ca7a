package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
)

// SubscriptionHandler upserts broadcast subscribers. Subscribe and
// unsubscribe events originate at the messaging side.
type SubscriptionHandler struct {
	subscribers store.SubscriberStore
}

func NewSubscriptionHandler(subscribers store.SubscriberStore) *SubscriptionHandler {
	return &SubscriptionHandler{subscribers: subscribers}
}

// Upsert creates or updates a subscriber row.
func (h *SubscriptionHandler) Upsert(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		ChatID   string `json:"chat_id"`
		IsActive bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ChatID == "" {
		return writeError(c, &model.ValidationError{Field: "chat_id", Message: "chat_id is required"})
	}

	sub, err := h.subscribers.UpsertSubscriber(c.Request().Context(), req.ChatID, req.IsActive)
	if err != nil {
		log.Error("Failed to upsert subscriber", zap.String("chat_id", req.ChatID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update subscription"})
	}

	log.Info("Subscription updated",
		zap.String("chat_id", sub.ChatID),
		zap.Bool("is_active", sub.IsActive))
	return c.JSON(http.StatusOK, sub)
}
