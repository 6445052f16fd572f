package model

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// 登録できる商品数の上限（ロール別）
func (r Role) ItemLimit() int64 {
	switch r {
	case RoleAdmin:
		return 10
	case RoleSuperAdmin:
		return 100
	default:
		return 0
	}
}

func (r Role) CanManageItems() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"uniqueIndex;type:varchar(50);not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
