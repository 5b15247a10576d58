package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// 在庫不足のレスポンス。現在庫をクライアントに返す。
type InsufficientStockResponse struct {
	Error             string `json:"error"`
	ProductID         int64  `json:"productId"`
	AvailableStock    int64  `json:"availableStock"`
	RequestedQuantity int64  `json:"requestedQuantity"`
}

// usecaseのエラーをHTTPレスポンスに対応づける。
// 前提条件エラーは入力を直せば再試行できる。ストレージ系は500に落とす。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, usecase.ErrEmptyCart) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Cart is empty"})
	}

	var stockErr *usecase.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusBadRequest, InsufficientStockResponse{
			Error:             "Insufficient stock for " + stockErr.ProductName,
			ProductID:         stockErr.ProductID,
			AvailableStock:    stockErr.Available,
			RequestedQuantity: stockErr.Requested,
		})
	}

	var notFoundErr *usecase.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Product not found"})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	id, ok := raw.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
