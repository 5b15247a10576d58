package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧取得の入力
type ProductListQuery struct {
	Page  int
	Limit int
}

// 商品の読み取りだけを約束。
// 在庫の書き込みは InventoryRepository 経由のみ。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
