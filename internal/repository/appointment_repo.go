package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"medicore/backend/internal/model"
	pkgerrors "medicore/backend/pkg/errors"
)

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	// CreateIfFree 在同一事务内锁定房间行与医生行后做重叠检查，
	// 通过则创建预约；冲突时返回 *BookingConflictError
	CreateIfFree(ctx context.Context, appt *model.Appointment) error
	// RescheduleIfFree 在同一事务内对调整后的时段重做冲突检查并落库改期。
	// 重叠检查排除预约自身；冲突时返回 *BookingConflictError，
	// 版本不匹配返回 pkgerrors.ErrOptimisticLock
	RescheduleIfFree(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, doctorID, roomID, status string, date *time.Time, offset, limit int) ([]model.Appointment, int64, error)
	ListActiveByRoomDate(ctx context.Context, roomID string, date time.Time) ([]model.Appointment, error)
	ListActiveByDoctorDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	CountActiveFutureByRoom(ctx context.Context, roomID string, from time.Time) (int64, error)
}

// appointmentRepo AppointmentRepository 的 GORM 实现
type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

// CreateIfFree 预约创建的核心事务。
// 加锁顺序固定为 房间行 → 医生行，避免并发预约互相死锁；
// 行锁将同房间/同医生的 check-then-act 串行化，
// gist 排他约束作为数据库层兜底。
func (r *appointmentRepo) CreateIfFree(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBookingRows(tx, appt); err != nil {
			return err
		}

		if err := checkOverlaps(tx, appt, ""); err != nil {
			return err
		}

		// gist 排他约束 excl_appointments_*_overlap 为并发兜底
		return translateConstraintErr(tx.Create(appt).Error)
	})
}

// RescheduleIfFree 改期事务，与 CreateIfFree 同一套加锁与重叠检查，
// 仅把预约自身排除出冲突判定，落库时走乐观锁
func (r *appointmentRepo) RescheduleIfFree(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBookingRows(tx, appt); err != nil {
			return err
		}

		if err := checkOverlaps(tx, appt, appt.AppointmentID); err != nil {
			return err
		}

		oldVersion := appt.Version
		result := tx.Model(appt).
			Where("appointment_id = ? AND version = ?", appt.AppointmentID, oldVersion).
			Updates(map[string]interface{}{
				"room_id":          appt.RoomID,
				"appointment_date": appt.AppointmentDate,
				"start_time":       appt.StartTime,
				"end_time":         appt.EndTime,
				"updated_by":       appt.UpdatedBy,
				"version":          oldVersion + 1,
			})
		if result.Error != nil {
			return translateConstraintErr(result.Error)
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		appt.Version = oldVersion + 1
		return nil
	})
}

// lockBookingRows 按固定顺序锁定房间行与医生行，
// 将同房间/同医生的 check-then-act 串行化
func lockBookingRows(tx *gorm.DB, appt *model.Appointment) error {
	var room model.Room
	if err := lockForUpdate(tx).
		Where("room_id = ?", appt.RoomID).
		First(&room).Error; err != nil {
		return err
	}

	var doctor model.User
	return lockForUpdate(tx).
		Where("user_id = ?", appt.DoctorID).
		First(&doctor).Error
}

// checkOverlaps 依次检查房间与医生维度的时段冲突，excludeID 用于改期时排除自身
func checkOverlaps(tx *gorm.DB, appt *model.Appointment, excludeID string) error {
	if id, err := findOverlap(tx, "room_id", appt.RoomID, appt, excludeID); err != nil {
		return err
	} else if id != "" {
		return &BookingConflictError{Resource: ConflictResourceRoom, AppointmentID: id}
	}

	if id, err := findOverlap(tx, "doctor_id", appt.DoctorID, appt, excludeID); err != nil {
		return err
	} else if id != "" {
		return &BookingConflictError{Resource: ConflictResourceDoctor, AppointmentID: id}
	}
	return nil
}

// findOverlap 返回与待建时段相交的首个未取消预约 ID，无冲突返回空串。
// 重叠判定：[a,b) 与 [c,d) 相交当且仅当 a<d 且 c<b
func findOverlap(tx *gorm.DB, column, value string, appt *model.Appointment, excludeID string) (string, error) {
	db := tx.Model(&model.Appointment{}).
		Select("appointment_id").
		Where(column+" = ?", value).
		Where("appointment_date = ?", appt.AppointmentDate).
		Where("status = ?", model.AppointmentStatusScheduled).
		Where("start_time < ? AND end_time > ?", appt.EndTime, appt.StartTime)
	if excludeID != "" {
		db = db.Where("appointment_id <> ?", excludeID)
	}

	var existing model.Appointment
	err := db.Order("start_time ASC").First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return existing.AppointmentID, nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Room").
		Where("appointment_id = ?", id).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) List(ctx context.Context, doctorID, roomID, status string, date *time.Time, offset, limit int) ([]model.Appointment, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Appointment{})

	if doctorID != "" {
		db = db.Where("doctor_id = ?", doctorID)
	}
	if roomID != "" {
		db = db.Where("room_id = ?", roomID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if date != nil {
		db = db.Where("appointment_date = ?", *date)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appts []model.Appointment
	err := db.Preload("Doctor").
		Preload("Room").
		Order("appointment_date ASC, start_time ASC").
		Offset(offset).
		Limit(limit).
		Find(&appts).Error
	return appts, total, err
}

func (r *appointmentRepo) ListActiveByRoomDate(ctx context.Context, roomID string, date time.Time) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND appointment_date = ? AND status = ?",
			roomID, date, model.AppointmentStatusScheduled).
		Order("start_time ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepo) ListActiveByDoctorDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status = ?",
			doctorID, date, model.AppointmentStatusScheduled).
		Order("start_time ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepo) Update(ctx context.Context, appt *model.Appointment) error {
	oldVersion := appt.Version
	result := r.db.WithContext(ctx).
		Model(appt).
		Where("appointment_id = ? AND version = ?", appt.AppointmentID, oldVersion).
		Updates(map[string]interface{}{
			"status":     appt.Status,
			"updated_by": appt.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	appt.Version = oldVersion + 1
	return nil
}

func (r *appointmentRepo) CountActiveFutureByRoom(ctx context.Context, roomID string, from time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("room_id = ? AND status = ? AND appointment_date >= ?",
			roomID, model.AppointmentStatusScheduled, from).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/appointment_repo.go
