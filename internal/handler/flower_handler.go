package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/notify"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/internal/sweeper"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// Batches newer than this are included in a new-inventory broadcast.
const newBatchWindow = 3 * time.Hour

// FlowerHandler binds inventory operations to HTTP.
type FlowerHandler struct {
	inventory  store.InventoryStore
	sweeper    *sweeper.Sweeper
	dispatcher *notify.Dispatcher
}

func NewFlowerHandler(inventory store.InventoryStore, sw *sweeper.Sweeper, dispatcher *notify.Dispatcher) *FlowerHandler {
	return &FlowerHandler{inventory: inventory, sweeper: sw, dispatcher: dispatcher}
}

// FlowerBatchRequest defines the structure for batch creation requests
type FlowerBatchRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url"`
}

// QuantityRequest carries the amount for sell/add operations.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CreateBatch handles adding a new flower batch.
func (h *FlowerHandler) CreateBatch(c echo.Context) error {
	log := logger.FromEcho(c)

	var req FlowerBatchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return writeError(c, &model.ValidationError{Field: "name", Message: "name is required"})
	}
	if req.Price < 0 {
		return writeError(c, &model.ValidationError{Field: "price", Message: "price must not be negative"})
	}
	if req.Quantity < 0 {
		return writeError(c, &model.ValidationError{Field: "quantity", Message: "quantity must not be negative"})
	}

	batch := model.NewFlowerBatch(req.Name, req.Description, req.Price, req.Quantity, req.ImageURL, time.Now().UTC())
	if err := h.inventory.AddBatch(c.Request().Context(), batch); err != nil {
		log.Error("Failed to create flower batch", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create flower batch"})
	}

	prometheus.BatchOperationsTotal.WithLabelValues("add").Inc()
	log.Info("Flower batch created",
		zap.Uint("batch_id", batch.ID),
		zap.String("name", batch.Name),
		zap.Int("quantity", batch.Quantity))
	return c.JSON(http.StatusCreated, batch)
}

// ListBatches handles paginated batch listing.
func (h *FlowerHandler) ListBatches(c echo.Context) error {
	log := logger.FromEcho(c)

	offset, _ := strconv.Atoi(c.QueryParam("skip"))
	if offset < 0 {
		return writeError(c, &model.ValidationError{Field: "skip", Message: "must not be negative"})
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	batches, err := h.inventory.ListBatches(c.Request().Context(), offset, limit)
	if err != nil {
		log.Error("Failed to list flower batches", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve flower batches"})
	}
	return c.JSON(http.StatusOK, batches)
}

// GetBatch handles retrieving a single batch by ID.
func (h *FlowerHandler) GetBatch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}
	batch, err := h.inventory.GetBatch(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, batch)
}

// Sell decrements stock (admin manual sale).
func (h *FlowerHandler) Sell(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	batch, err := h.inventory.DecrementQuantity(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	prometheus.BatchOperationsTotal.WithLabelValues("sell").Inc()
	log.Info("Batch stock decremented",
		zap.Uint("batch_id", id),
		zap.Int("sold", req.Quantity),
		zap.Int("remaining", batch.Quantity))
	return c.JSON(http.StatusOK, batch)
}

// AddStock increments stock; a sold batch becomes available again.
func (h *FlowerHandler) AddStock(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	batch, err := h.inventory.IncrementQuantity(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	prometheus.BatchOperationsTotal.WithLabelValues("add_stock").Inc()
	log.Info("Batch stock incremented",
		zap.Uint("batch_id", id),
		zap.Int("added", req.Quantity),
		zap.Int("quantity", batch.Quantity))
	return c.JSON(http.StatusOK, batch)
}

// DeleteBatch removes a batch. Historical order items keep their snapshot.
func (h *FlowerHandler) DeleteBatch(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	batch, err := h.inventory.DeleteBatch(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	prometheus.BatchOperationsTotal.WithLabelValues("delete").Inc()
	log.Info("Flower batch deleted", zap.Uint("batch_id", id), zap.String("name", batch.Name))
	return c.JSON(http.StatusOK, batch)
}

// Cleanup triggers the retention sweep on demand.
func (h *FlowerHandler) Cleanup(c echo.Context) error {
	deleted, err := h.sweeper.SweepOnce(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Cleanup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Cleanup successful",
		"deleted": deleted,
	})
}

// NotifyNewFlowers broadcasts batches created in the last three hours.
func (h *FlowerHandler) NotifyNewFlowers(c echo.Context) error {
	log := logger.FromEcho(c)

	since := time.Now().UTC().Add(-newBatchWindow)
	batches, err := h.inventory.ListBatchesCreatedSince(c.Request().Context(), since)
	if err != nil {
		log.Error("Failed to collect new batches", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to collect new batches"})
	}
	if len(batches) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "No new flower batches in the last 3 hours"})
	}

	event := notify.NewInventoryBroadcast{}
	for _, b := range batches {
		event.Batches = append(event.Batches, notify.BroadcastBatch{
			Name:        b.Name,
			Description: b.Description,
			Price:       b.Price,
			Quantity:    b.Quantity,
			ImageURL:    b.ImageURL,
		})
	}
	h.dispatcher.NewInventory(event)

	log.Info("New inventory broadcast queued", zap.Int("batch_count", len(batches)))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Broadcast started",
		"batches": len(batches),
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, &model.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return uint(id), nil
}
