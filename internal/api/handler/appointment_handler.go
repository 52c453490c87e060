package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"medicore/backend/internal/dto"
	"medicore/backend/internal/repository"
	"medicore/backend/internal/service"
	"medicore/backend/pkg/response"
)

// AppointmentHandler 预约挂号 HTTP 处理器
type AppointmentHandler struct {
	bookingSvc service.BookingService
}

// NewAppointmentHandler 创建 AppointmentHandler
func NewAppointmentHandler(bookingSvc service.BookingService) *AppointmentHandler {
	return &AppointmentHandler{bookingSvc: bookingSvc}
}

// BookAppointment 预约挂号（医生/管理员）
// POST /api/v1/appointments
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appt, err := h.bookingSvc.Book(c.Request.Context(), &req, userID)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.Created(c, appt)
}

// ListAppointments 预约列表
// GET /api/v1/appointments
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	var req dto.AppointmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	list, total, err := h.bookingSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAppointment 预约详情
// GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, err := h.bookingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OK(c, appt)
}

// CancelAppointment 取消预约（医生取消自己的，管理员任意）
// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateAppointment 调整预约（医生调整自己的，管理员任意）
// PUT /api/v1/appointments/:id
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.HasChanges() {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appt, err := h.bookingSvc.Reschedule(c.Request.Context(), c.Param("id"), &req, userID, role)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OK(c, appt)
}

// CheckFree 查询资源空闲状态
// GET /api/v1/appointments/free
func (h *AppointmentHandler) CheckFree(c *gin.Context) {
	resourceType := c.Query("resource_type")
	resourceID := c.Query("resource_id")
	date := c.Query("date")
	start := c.Query("start_time")
	end := c.Query("end_time")
	if resourceType == "" || resourceID == "" || date == "" || start == "" || end == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	free, err := h.bookingSvc.IsFree(c.Request.Context(), resourceType, resourceID, date, start, end)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OK(c, gin.H{"free": free})
}

// SetAvailability 设置医生可约时段（仅参考展示）
// POST /api/v1/appointments/availability
func (h *AppointmentHandler) SetAvailability(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	avail, err := h.bookingSvc.SetAvailability(c.Request.Context(), &req, userID, role)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.Created(c, avail)
}

// ListAvailability 查询医生可约时段
// GET /api/v1/appointments/availability
func (h *AppointmentHandler) ListAvailability(c *gin.Context) {
	var req dto.AvailabilityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.bookingSvc.ListAvailability(c.Request.Context(), &req)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	response.OK(c, list)
}

// handleAppointmentError 预约模块错误 → HTTP 响应
func handleAppointmentError(c *gin.Context, err error) {
	var conflict *repository.BookingConflictError
	if errors.As(err, &conflict) {
		resourceName := "房间"
		if conflict.Resource == repository.ConflictResourceDoctor {
			resourceName = "医生"
		}
		details := fmt.Sprintf("%s时段已被占用", resourceName)
		if conflict.AppointmentID != "" {
			details = fmt.Sprintf("%s时段已被预约 %s 占用", resourceName, conflict.AppointmentID)
		}
		response.ConflictWithDetails(c, 25003, "预约时间段冲突", details)
		return
	}

	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(c, 25001, "预约不存在")
	case errors.Is(err, service.ErrApptDateInvalid),
		errors.Is(err, service.ErrApptTimeInvalid),
		errors.Is(err, service.ErrApptWindowInvalid),
		errors.Is(err, service.ErrResourceTypeInvalid):
		response.BadRequest(c, 25002, err.Error())
	case errors.Is(err, service.ErrAppointmentCancelled):
		response.Conflict(c, 25004, "预约已取消")
	case errors.Is(err, service.ErrNotAppointmentOwner):
		response.Forbidden(c, 25005, "只能操作自己的预约")
	case errors.Is(err, service.ErrDoctorNotFound):
		response.NotFound(c, 25006, "医生不存在")
	case errors.Is(err, service.ErrNotADoctor):
		response.BadRequest(c, 25007, "该用户不是医生")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 24001, "房间不存在")
	case errors.Is(err, service.ErrRoomInactive):
		response.BadRequest(c, 25008, "房间已停用")
	case errors.Is(err, service.ErrNotOwnAvailability):
		response.Forbidden(c, 25009, "只能设置自己的可约时段")
	case errors.Is(err, service.ErrAppointmentChanged):
		response.Conflict(c, 25010, "预约已被其他操作修改")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/appointment_handler.go
