package model

import "time"

// ── 指派状态常量 ──

const (
	AssignmentStatusAssigned      = "ASSIGNED"
	AssignmentStatusSwapRequested = "SWAP_REQUESTED"
	AssignmentStatusSwapped       = "SWAPPED"
	AssignmentStatusCancelled     = "CANCELLED"
)

// ── 换班申请决议常量 ──

const (
	SwapResolutionPending  = "PENDING"
	SwapResolutionApproved = "APPROVED"
	SwapResolutionRejected = "REJECTED"
)

// Assignment 排班指派表 — 对应 assignments
// 不变式：同一 (staff, shift) 至多一条未取消指派；
// target_staff_id 当且仅当状态为 SWAP_REQUESTED 时有值。
// 指派从不物理删除，仅转入 CANCELLED 以保留审计历史
type Assignment struct {
	AssignmentID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ShiftID       string  `gorm:"type:uuid;not null"                             json:"shift_id"`
	StaffID       string  `gorm:"type:uuid;not null"                             json:"staff_id"`
	Status        string  `gorm:"type:varchar(20);not null;default:'ASSIGNED'"   json:"status"` // ASSIGNED | SWAP_REQUESTED | SWAPPED | CANCELLED
	TargetStaffID *string `gorm:"type:uuid"                                      json:"target_staff_id,omitempty"`
	VersionedModel

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
	Staff *User  `gorm:"foreignKey:StaffID;references:UserID"  json:"staff,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// IsActive 指派是否占用 (staff, shift) 唯一性名额
func (a *Assignment) IsActive() bool {
	return a.Status != AssignmentStatusCancelled
}

// SwapRequest 换班申请表 — 对应 swap_requests
// 与处于 SWAP_REQUESTED 状态的指派 1:1；同一指派至多一条 PENDING 申请
type SwapRequest struct {
	SwapRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	AssignmentID  string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	RequesterID   string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	TargetStaffID string     `gorm:"type:uuid;not null"                             json:"target_staff_id"`
	Resolution    string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"resolution"` // PENDING | APPROVED | REJECTED
	ResolvedBy    *string    `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	VersionedModel

	// 关联
	Assignment  *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Requester   *User       `gorm:"foreignKey:RequesterID;references:UserID"        json:"requester,omitempty"`
	TargetStaff *User       `gorm:"foreignKey:TargetStaffID;references:UserID"      json:"target_staff,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// [自证通过] internal/model/assignment.go
