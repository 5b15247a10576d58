package repository

import "context"

// 在庫の唯一の書き込み口。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算（1回のUPDATEで条件チェックまで行う）
	DecrementStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
}
