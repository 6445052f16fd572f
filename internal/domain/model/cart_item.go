package model

import "time"

// カートの明細。追加時点の価格を必ず保存する（見積り用）。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index:idx_cart_brand,unique" json:"cart_id"`
	BrandKey          string    `gorm:"type:varchar(100);not null;index:idx_cart_brand,unique" json:"-"`
	Brand             string    `gorm:"type:varchar(100);not null" json:"brand"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot float64   `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
