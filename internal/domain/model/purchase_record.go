package model

import "time"

// PurchaseRecord はブランドごとの累計販売数（台帳）。
// 1ブランド1行。初回購入で作成、以後は加算のみ。
type PurchaseRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BrandKey     string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"-"`
	Brand        string    `gorm:"type:varchar(100);not null" json:"brand"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	QuantitySold int64     `gorm:"not null;default:0" json:"quantity_sold"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
