package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。priceAtTime はカート明細から写した履歴価格で、以後不変。
type OrderLine struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"orderId"`
	ProductID   int64           `gorm:"not null;index" json:"productId"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"priceAtTime"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}
