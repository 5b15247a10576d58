package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUsecaseWithMocks() (*usecase.CartUsecase, *CartLineRepoMock, *ProductRepoMock) {
	cartLines := &CartLineRepoMock{}
	products := &ProductRepoMock{}
	return usecase.NewCartUsecase(cartLines, products), cartLines, products
}

func TestAddToCart_FirstAddSnapshotsCurrentPrice(t *testing.T) {
	uc, cartLines, products := newCartUsecaseWithMocks()

	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "Mug", Price: d("5.00"), Stock: 10,
	}, nil)
	cartLines.On("FindByUserAndProduct", mock.Anything, int64(1), int64(5)).Return(model.CartLine{}, false, nil)
	// 新規作成時に現在価格がスナップショットとして渡る
	cartLines.On("Upsert", mock.Anything, int64(1), int64(5), int64(2), mock.MatchedBy(func(p decimal.Decimal) bool {
		return p.Equal(d("5.00"))
	})).Return(nil)
	cartLines.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 10, UserID: 1, ProductID: 5, Quantity: 2, PriceAtTime: d("5.00"),
			Product: model.Product{ID: 5, Name: "Mug", Price: d("5.00")}},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].PriceAtTime.Equal(d("5.00")))
	assert.True(t, out.Summary.TotalAmount.Equal(d("10.00")))
	cartLines.AssertCalled(t, "Upsert", mock.Anything, int64(1), int64(5), int64(2), mock.Anything)
}

func TestAddToCart_MergeValidatesCombinedQuantity(t *testing.T) {
	uc, cartLines, products := newCartUsecaseWithMocks()

	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "Mug", Price: d("5.00"), Stock: 4,
	}, nil)
	// 既に2個入っている
	cartLines.On("FindByUserAndProduct", mock.Anything, int64(1), int64(5)).Return(model.CartLine{
		ID: 10, UserID: 1, ProductID: 5, Quantity: 2, PriceAtTime: d("5.00"),
	}, true, nil)

	// 2 + 3 > 4 なので在庫不足
	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, Quantity: 3})
	require.Error(t, err)

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(4), stockErr.Available)
	assert.Equal(t, int64(5), stockErr.Requested)

	cartLines.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_MergeKeepsFirstPrice(t *testing.T) {
	// 値上げ後に同じ商品を追加しても、スナップショット価格は最初のまま
	uc, cartLines, products := newCartUsecaseWithMocks()

	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "Mug", Price: d("25.00"), Stock: 10,
	}, nil)
	cartLines.On("FindByUserAndProduct", mock.Anything, int64(1), int64(5)).Return(model.CartLine{
		ID: 10, UserID: 1, ProductID: 5, Quantity: 1, PriceAtTime: d("10.00"),
	}, true, nil)
	// 現在価格25.00ではなく、追加時の10.00が渡る
	cartLines.On("Upsert", mock.Anything, int64(1), int64(5), int64(1), mock.MatchedBy(func(p decimal.Decimal) bool {
		return p.Equal(d("10.00"))
	})).Return(nil)
	cartLines.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 10, UserID: 1, ProductID: 5, Quantity: 2, PriceAtTime: d("10.00"),
			Product: model.Product{ID: 5, Name: "Mug", Price: d("25.00")}},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].PriceAtTime.Equal(d("10.00")))
	assert.True(t, out.Lines[0].CurrentPrice.Equal(d("25.00")))
	assert.True(t, out.Summary.TotalAmount.Equal(d("20.00")))
}

func TestGetCart_SnapshotPriceNotCurrentPrice(t *testing.T) {
	// 商品が値上げされてもカートの表示合計はスナップショット価格のまま
	uc, cartLines, _ := newCartUsecaseWithMocks()

	cartLines.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 10, UserID: 1, ProductID: 5, Quantity: 2, PriceAtTime: d("5.00"),
			Product: model.Product{ID: 5, Name: "Mug", Price: d("9.99"),
				Category: model.Category{ID: 1, Name: "Kitchen"}}},
	}, nil)

	out, err := uc.GetCart(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].PriceAtTime.Equal(d("5.00")))
	assert.True(t, out.Lines[0].CurrentPrice.Equal(d("9.99")))
	assert.Equal(t, "Kitchen", out.Lines[0].CategoryName)
	assert.True(t, out.Summary.TotalAmount.Equal(d("10.00")))
	assert.Equal(t, 1, out.Summary.TotalItems)
	assert.Equal(t, int64(2), out.Summary.TotalQuantity)
}

func TestAddToCart_ProductNotFound(t *testing.T) {
	uc, cartLines, products := newCartUsecaseWithMocks()

	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 99, Quantity: 1})
	require.Error(t, err)

	var notFound *usecase.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(99), notFound.ProductID)

	cartLines.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLine_OtherUsersLineHidden(t *testing.T) {
	uc, cartLines, _ := newCartUsecaseWithMocks()

	cartLines.On("FindByID", mock.Anything, int64(10)).Return(model.CartLine{
		ID: 10, UserID: 2, ProductID: 5, Quantity: 1, PriceAtTime: d("5.00"),
	}, nil)

	_, err := uc.UpdateLine(context.Background(), 1, 10, usecase.UpdateCartLineInput{Quantity: 3})
	require.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	cartLines.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLine_StockExceeded(t *testing.T) {
	uc, cartLines, products := newCartUsecaseWithMocks()

	cartLines.On("FindByID", mock.Anything, int64(10)).Return(model.CartLine{
		ID: 10, UserID: 1, ProductID: 5, Quantity: 1, PriceAtTime: d("5.00"),
	}, nil)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "Mug", Price: d("5.00"), Stock: 2,
	}, nil)

	_, err := uc.UpdateLine(context.Background(), 1, 10, usecase.UpdateCartLineInput{Quantity: 3})
	require.Error(t, err)

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.Available)
	assert.Equal(t, int64(3), stockErr.Requested)
}

func TestClear_EmptyCartSucceeds(t *testing.T) {
	uc, cartLines, _ := newCartUsecaseWithMocks()

	cartLines.On("DeleteByUserID", mock.Anything, int64(1)).Return(nil)
	cartLines.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartLine{}, nil)

	out, err := uc.Clear(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, out.Lines, 0)
	assert.Equal(t, 0, out.Summary.TotalItems)
	assert.True(t, out.Summary.TotalAmount.Equal(d("0")))
}

func TestRemoveLine_OtherUsersLineHidden(t *testing.T) {
	uc, cartLines, _ := newCartUsecaseWithMocks()

	cartLines.On("FindByID", mock.Anything, int64(10)).Return(model.CartLine{
		ID: 10, UserID: 2, ProductID: 5, Quantity: 1, PriceAtTime: d("5.00"),
	}, nil)

	_, err := uc.RemoveLine(context.Background(), 1, 10)
	require.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	cartLines.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}
