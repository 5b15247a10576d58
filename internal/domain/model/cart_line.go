package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// priceAtTime は追加時点の価格。マージしても更新しない。
type CartLine struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;index;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID   int64           `gorm:"not null;index;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"priceAtTime"`
	Product     Product         `gorm:"foreignKey:ProductID" json:"product"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
