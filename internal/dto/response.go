package dto

import "time"

// ── 认证模块响应 ──

// TokenResponse 登录/注册成功响应
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	IsPredefined bool   `json:"is_predefined"`
}

// ── 申诉模块响应 ──

// AttachmentResponse 附件信息响应
type AttachmentResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// GrievanceResponse 申诉详情响应
type GrievanceResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Status      string               `json:"status"`
	Comments    string               `json:"comments"`
	Submitter   *UserResponse        `json:"submitter,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// StatsResponse 仪表盘统计响应
type StatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Resolved   int64 `json:"resolved"`
	InProgress int64 `json:"inProgress"`
}

// [自证通过] internal/dto/response.go
