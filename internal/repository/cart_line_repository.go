package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartLineRepository interface {
	// 商品・カテゴリをJOINした表示用の一覧
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	FindByID(ctx context.Context, lineID int64) (model.CartLine, error)
	// (userID, productID) で1明細。2値目は存在するか。
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, bool, error)
	// 同一商品は数量加算。価格スナップショットは新規作成時のみ保存。
	Upsert(ctx context.Context, userID int64, productID int64, addQty int64, priceAtTime decimal.Decimal) error
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error
	// カートを空にする（空でも成功）
	DeleteByUserID(ctx context.Context, userID int64) error
}
