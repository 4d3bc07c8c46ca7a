package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/authz"
	"github.com/12344321abc/romantic-flowers-app/internal/middleware"
	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/order"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
)

// OrderHandler binds order operations to HTTP.
type OrderHandler struct {
	engine    *order.Engine
	orders    store.OrderStore
	inventory store.InventoryStore
}

func NewOrderHandler(engine *order.Engine, orders store.OrderStore, inventory store.InventoryStore) *OrderHandler {
	return &OrderHandler{engine: engine, orders: orders, inventory: inventory}
}

// OrderRequest is the inbound order payload.
type OrderRequest struct {
	Items           []order.Line `json:"items"`
	CustomerComment string       `json:"customer_comment"`
}

type orderItemView struct {
	ID                 uint    `json:"id"`
	FlowerBatchID      uint    `json:"flower_batch_id"`
	Name               string  `json:"name"`
	Quantity           int     `json:"quantity"`
	PriceAtTimeOfOrder float64 `json:"price_at_time_of_order"`
}

type orderView struct {
	ID              uint            `json:"id"`
	CustomerID      uint            `json:"customer_id"`
	Status          string          `json:"status"`
	CustomerComment string          `json:"customer_comment"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []orderItemView `json:"items"`
	Total           float64         `json:"total"`
}

// viewOf resolves batch names best-effort: a batch deleted after the order
// was placed leaves the item intact, just without a live name.
func (h *OrderHandler) viewOf(ctx context.Context, o *model.Order) orderView {
	view := orderView{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		CustomerComment: o.CustomerComment,
		CreatedAt:       o.CreatedAt,
		Items:           make([]orderItemView, 0, len(o.Items)),
		Total:           o.Total(),
	}
	for _, item := range o.Items {
		name := "(deleted batch)"
		if batch, err := h.inventory.GetBatch(ctx, item.FlowerBatchID); err == nil {
			name = batch.Name
		}
		view.Items = append(view.Items, orderItemView{
			ID:                 item.ID,
			FlowerBatchID:      item.FlowerBatchID,
			Name:               name,
			Quantity:           item.Quantity,
			PriceAtTimeOfOrder: item.PriceAtTimeOfOrder,
		})
	}
	return view
}

// Create places an order for the authenticated customer.
func (h *OrderHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := middleware.IdentityFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing identity"})
	}
	if err := authz.RequireCustomer(id); err != nil {
		return writeError(c, err)
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	placed, err := h.engine.PlaceOrder(c.Request().Context(), id.UserID, req.Items, req.CustomerComment)
	if err != nil {
		if !isClientFault(err) {
			log.Error("Order placement failed", zap.Error(err))
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, h.viewOf(c.Request().Context(), placed))
}

// List returns all orders, newest first. Admin only (enforced by route).
func (h *OrderHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("skip"))
	if offset < 0 {
		return writeError(c, &model.ValidationError{Field: "skip", Message: "must not be negative"})
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	orders, err := h.orders.ListOrders(c.Request().Context(), offset, limit)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, h.viewOf(c.Request().Context(), &orders[i]))
	}
	return c.JSON(http.StatusOK, views)
}

// ListMine returns the authenticated customer's own orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	id, ok := middleware.IdentityFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing identity"})
	}
	if err := authz.RequireCustomer(id); err != nil {
		return writeError(c, err)
	}

	orders, err := h.orders.ListOrdersByCustomer(c.Request().Context(), id.UserID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list customer orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, h.viewOf(c.Request().Context(), &orders[i]))
	}
	return c.JSON(http.StatusOK, views)
}

// Get returns one order; admins see any, customers only their own.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := middleware.IdentityFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing identity"})
	}

	orderID, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	o, err := h.orders.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	if err := authz.CanViewOrder(id, o); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.viewOf(c.Request().Context(), o))
}

func isClientFault(err error) bool {
	var insufficient *model.InsufficientStockError
	var batchNotFound *model.BatchNotFoundError
	var validation *model.ValidationError
	return errors.As(err, &insufficient) || errors.As(err, &batchNotFound) || errors.As(err, &validation)
}
