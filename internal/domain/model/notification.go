package model

import "time"

// LowStockThreshold を下回ると在庫僅少メッセージになる。
const LowStockThreshold = 3

// Notification は在庫イベントの記録。追記専用で、作成後は不変。
type Notification struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand      string    `gorm:"type:varchar(100);not null;index" json:"brand"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	InStock    bool      `gorm:"not null" json:"in_stock"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedBy  string    `gorm:"type:varchar(50);not null;index" json:"created_by"`
	NotifiedAt time.Time `gorm:"not null" json:"notified_at"`
}
