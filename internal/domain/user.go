package domain

import (
	"time"
)

type Role string

const (
	RolePlain    Role = "普通用户"
	RoleOperator Role = "运营"
	RoleAdmin    Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// IsHandler 报告该用户是否能够负责招募或担任主播的直属运营。
func (u *User) IsHandler() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}
