package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/12344321abc/romantic-flowers-app/internal/authz"
	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

// writeError maps the error taxonomy to HTTP responses. A failed order
// tells the caller exactly which item failed and by how much.
func writeError(c echo.Context, err error) error {
	var insufficient *model.InsufficientStockError
	var batchNotFound *model.BatchNotFoundError
	var validation *model.ValidationError

	switch {
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"batch_name": insufficient.BatchName,
			"available":  insufficient.Available,
			"requested":  insufficient.Requested,
		})
	case errors.As(err, &batchNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":           "flower batch not found",
			"flower_batch_id": batchNotFound.BatchID,
		})
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error()})
	case errors.Is(err, authz.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Not enough permissions"})
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
