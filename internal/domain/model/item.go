package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreatedBySystem は所有者のいない商品のイベントに付ける送信者名。
const CreatedBySystem = "system"

// Item はブランド名をキーにした商品。
// BrandKey は小文字化した正規化キーで、大文字小文字を区別しない
// 一意制約と検索はこちらに張る（正規表現マッチはしない）。
type Item struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand       string         `gorm:"type:varchar(100);not null" json:"brand"`
	BrandKey    string         `gorm:"uniqueIndex;type:varchar(100);not null" json:"-"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64        `gorm:"not null" json:"price"`
	Quantity    int64          `gorm:"not null" json:"quantity"`
	Description string         `gorm:"type:text" json:"description"`
	InStock     bool           `gorm:"not null" json:"in_stock"`
	CreatedBy   string         `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Owner は通知の宛先（無所有なら system）。
func (i Item) Owner() string {
	if i.CreatedBy == "" {
		return CreatedBySystem
	}
	return i.CreatedBy
}

// NormalizeBrand はブランドの正規化キーを作る。
func NormalizeBrand(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}
