package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartLineRepo repo.CartLineRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartLineRepo repo.CartLineRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartLineRepo: cartLineRepo,
		productRepo:  productRepo,
	}
}

// price は priceAtTime（追加時点の価格）を返す。
type CartLineResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	CategoryName string          `json:"categoryName"`
	PriceAtTime  decimal.Decimal `json:"priceAtTime"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Quantity     int64           `json:"quantity"`
}

type CartSummary struct {
	TotalItems    int             `json:"totalItems"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type CartResponse struct {
	Lines   []CartLineResponse `json:"cartLines"`
	Summary CartSummary        `json:"summary"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartLineInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければ空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 価格スナップショットは最初に追加した時点のまま動かさない。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, &ProductNotFoundError{ProductID: in.ProductID}
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 既存明細があれば加算後の数量で在庫チェック
	existing, found, err := u.cartLineRepo.FindByUserAndProduct(ctx, userID, in.ProductID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	if found {
		existingQty = existing.Quantity
	}

	newQty := existingQty + in.Quantity
	if newQty > p.Stock {
		return CartResponse{}, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   newQty,
		}
	}

	// Upsert（同一商品は加算）。
	// 価格は最初に追加した時点のスナップショットを渡す。加算で現在価格に
	// 更新してはいけない（repo側のmerge分岐も数量しか触らない）。
	priceAtTime := p.Price
	if found {
		priceAtTime = existing.PriceAtTime
	}
	if err := u.cartLineRepo.Upsert(ctx, userID, in.ProductID, in.Quantity, priceAtTime); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更（所有チェック＋在庫チェック、価格は変えない）。
func (u *CartUsecase) UpdateLine(ctx context.Context, userID int64, lineID int64, in UpdateCartLineInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	line, err := u.cartLineRepo.FindByID(ctx, lineID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の明細は「存在しない扱い」
	if line.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
	}

	p, err := u.productRepo.FindByID(ctx, line.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, &ProductNotFoundError{ProductID: line.ProductID}
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   in.Quantity,
		}
	}

	if err := u.cartLineRepo.UpdateQuantity(ctx, lineID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, lineID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	line, err := u.cartLineRepo.FindByID(ctx, lineID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if line.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
	}

	if err := u.cartLineRepo.DeleteByID(ctx, lineID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart line not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// カートを空にする。空のカートでも成功。
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.cartLineRepo.DeleteByUserID(ctx, userID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細をまとめてCartResponseを作る。
// 合計はスナップショット価格で、合計してから2桁に丸める。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	lines, err := u.cartLineRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respLines := make([]CartLineResponse, 0, len(lines))
	total := decimal.Zero
	var totalQty int64 = 0

	for _, l := range lines {
		respLines = append(respLines, CartLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			Name:         l.Product.Name,
			CategoryName: l.Product.Category.Name,
			PriceAtTime:  l.PriceAtTime,
			CurrentPrice: l.Product.Price,
			Quantity:     l.Quantity,
		})

		total = total.Add(l.PriceAtTime.Mul(decimal.NewFromInt(l.Quantity)))
		totalQty += l.Quantity
	}

	return CartResponse{
		Lines: respLines,
		Summary: CartSummary{
			TotalItems:    len(lines),
			TotalQuantity: totalQty,
			TotalAmount:   total.Round(2),
		},
	}, nil
}
