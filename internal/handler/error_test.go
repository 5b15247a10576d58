package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteError_InsufficientStock(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, &usecase.InsufficientStockError{
		ProductID:   5,
		ProductName: "Laptop",
		Available:   1,
		Requested:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body InsufficientStockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient stock for Laptop", body.Error)
	assert.Equal(t, int64(5), body.ProductID)
	assert.Equal(t, int64(1), body.AvailableStock)
	assert.Equal(t, int64(2), body.RequestedQuantity)
}

func TestWriteError_EmptyCart(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, usecase.ErrEmptyCart)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cart is empty", body.Error)
}

func TestWriteError_ProductNotFound(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, &usecase.ProductNotFoundError{ProductID: 99})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Product not found", body.Error)
}

func TestWriteError_HTTPError(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, usecase.NewHTTPError(http.StatusNotFound, "order not found"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, errors.New("connection lost"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}
