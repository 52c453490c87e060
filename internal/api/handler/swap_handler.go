package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"medicore/backend/internal/dto"
	"medicore/backend/internal/service"
	"medicore/backend/pkg/response"
)

// SwapHandler 换班模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// RequestSwap 发起换班申请（指派当前员工）
// POST /api/v1/shifts/swap
func (h *SwapHandler) RequestSwap(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RequestSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	swap, err := h.swapSvc.Request(c.Request.Context(), userID, &req)
	if err != nil {
		handleSwapError(c, err)
		return
	}

	response.Created(c, swap)
}

// ListPendingSwaps 待审批换班申请列表（管理员）
// GET /api/v1/shifts/swap/requests
func (h *SwapHandler) ListPendingSwaps(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	swaps, total, err := h.swapSvc.ListPending(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, swaps, total, req.GetPage(), req.GetPageSize())
}

// ApproveSwap 审批通过换班申请（管理员）
// POST /api/v1/shifts/swap/approve/:id
func (h *SwapHandler) ApproveSwap(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	swap, err := h.swapSvc.Approve(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleSwapError(c, err)
		return
	}

	response.OK(c, swap)
}

// RejectSwap 驳回换班申请（管理员）
// POST /api/v1/shifts/swap/reject/:id
func (h *SwapHandler) RejectSwap(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	swap, err := h.swapSvc.Reject(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleSwapError(c, err)
		return
	}

	response.OK(c, swap)
}

// handleSwapError 换班模块错误 → HTTP 响应
func handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 23001, "换班申请不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 22001, "排班指派不存在")
	case errors.Is(err, service.ErrNotAssignmentOwner):
		response.Forbidden(c, 23002, "仅指派的当前员工可发起换班")
	case errors.Is(err, service.ErrSwapSelfTarget):
		response.BadRequest(c, 23003, "不能向自己发起换班")
	case errors.Is(err, service.ErrSwapTargetNotFound):
		response.NotFound(c, 23004, "目标员工不存在")
	case errors.Is(err, service.ErrSwapTargetDisabled):
		response.BadRequest(c, 23004, "目标员工账号已停用")
	case errors.Is(err, service.ErrSwapNotAllowed):
		response.Conflict(c, 23005, "指派当前状态不允许发起换班")
	case errors.Is(err, service.ErrSwapPendingExists):
		response.Conflict(c, 23006, "该指派已有待审批的换班申请")
	case errors.Is(err, service.ErrSwapAlreadyResolved):
		response.Conflict(c, 23007, "换班申请已被处理")
	case errors.Is(err, service.ErrSwapTargetOccupied):
		response.Conflict(c, 23008, "目标员工在该班次已有有效指派")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/swap_handler.go
