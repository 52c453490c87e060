package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"medicore/backend/internal/model"
	"medicore/backend/internal/repository"
	pkgerrors "medicore/backend/pkg/errors"
	"medicore/backend/pkg/timeutil"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && u.Name != keyword && u.Email != keyword {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	seq    int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, dateFrom, dateTo *time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if dateFrom != nil && s.ShiftDate.Before(*dateFrom) {
			continue
		}
		if dateTo != nil && s.ShiftDate.After(*dateTo) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ShiftDate.Equal(result[j].ShiftDate) {
			return result[i].ShiftDate.Before(result[j].ShiftDate)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	existing, ok := m.shifts[shift.ShiftID]
	if !ok || existing.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.shifts, id)
	return nil
}

// ── Mock AssignmentRepository ──
// 复刻真实仓储的事务语义：(staff, shift) 有效唯一性在创建时校验

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	shifts      *mockShiftRepo
	users       *mockUserRepo
	seq         int
}

func newMockAssignmentRepo(shifts *mockShiftRepo, users *mockUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		shifts:      shifts,
		users:       users,
	}
}

func (m *mockAssignmentRepo) attach(a *model.Assignment) *model.Assignment {
	copied := *a
	if s, ok := m.shifts.shifts[a.ShiftID]; ok {
		copied.Shift = s
	}
	if u, ok := m.users.users[a.StaffID]; ok {
		copied.Staff = u
	}
	return &copied
}

func (m *mockAssignmentRepo) CreateExclusive(_ context.Context, assignment *model.Assignment) error {
	if _, ok := m.shifts.shifts[assignment.ShiftID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, a := range m.assignments {
		if a.StaffID == assignment.StaffID && a.ShiftID == assignment.ShiftID && a.IsActive() {
			return repository.ErrDuplicateAssignment
		}
	}
	if assignment.AssignmentID == "" {
		m.seq++
		assignment.AssignmentID = fmt.Sprintf("asg-%03d", m.seq)
	}
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return m.attach(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByStaff(_ context.Context, staffID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.StaffID == staffID {
			result = append(result, *m.attach(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) ListActiveByShift(_ context.Context, shiftID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.IsActive() {
			result = append(result, *m.attach(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) CountActiveByShift(_ context.Context, shiftID string) (int64, error) {
	var count int64
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentRepo) FindActiveByStaffAndShift(_ context.Context, staffID, shiftID string) (*model.Assignment, error) {
	for _, a := range m.assignments {
		if a.StaffID == staffID && a.ShiftID == shiftID && a.IsActive() {
			return m.attach(a), nil
		}
	}
	return nil, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	existing, ok := m.assignments[assignment.AssignmentID]
	if !ok || existing.Version != assignment.Version {
		return pkgerrors.ErrOptimisticLock
	}
	assignment.Version++
	stored := *assignment
	stored.Shift = nil
	stored.Staff = nil
	m.assignments[assignment.AssignmentID] = &stored
	return nil
}

// ── Mock SwapRequestRepository ──
// 复刻真实仓储的状态机语义：创建迁移、一次性决议、目标占用校验

type mockSwapRequestRepo struct {
	swaps       map[string]*model.SwapRequest
	assignments *mockAssignmentRepo
	users       *mockUserRepo
	seq         int
}

func newMockSwapRequestRepo(assignments *mockAssignmentRepo, users *mockUserRepo) *mockSwapRequestRepo {
	return &mockSwapRequestRepo{
		swaps:       make(map[string]*model.SwapRequest),
		assignments: assignments,
		users:       users,
	}
}

func (m *mockSwapRequestRepo) attach(sw *model.SwapRequest) *model.SwapRequest {
	copied := *sw
	if a, ok := m.assignments.assignments[sw.AssignmentID]; ok {
		copied.Assignment = m.assignments.attach(a)
	}
	if u, ok := m.users.users[sw.RequesterID]; ok {
		copied.Requester = u
	}
	if u, ok := m.users.users[sw.TargetStaffID]; ok {
		copied.TargetStaff = u
	}
	return &copied
}

func (m *mockSwapRequestRepo) CreatePending(_ context.Context, swap *model.SwapRequest) error {
	assignment, ok := m.assignments.assignments[swap.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if assignment.Status != model.AssignmentStatusAssigned {
		return repository.ErrSwapNotRequestable
	}
	for _, sw := range m.swaps {
		if sw.AssignmentID == swap.AssignmentID && sw.Resolution == model.SwapResolutionPending {
			return repository.ErrSwapPendingExists
		}
	}

	if swap.SwapRequestID == "" {
		m.seq++
		swap.SwapRequestID = fmt.Sprintf("swap-%03d", m.seq)
	}
	if swap.Version == 0 {
		swap.Version = 1
	}
	m.swaps[swap.SwapRequestID] = swap

	assignment.Status = model.AssignmentStatusSwapRequested
	target := swap.TargetStaffID
	assignment.TargetStaffID = &target
	return nil
}

func (m *mockSwapRequestRepo) Approve(_ context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error) {
	swap, ok := m.swaps[swapRequestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if swap.Resolution != model.SwapResolutionPending {
		return nil, repository.ErrSwapAlreadyResolved
	}
	assignment, ok := m.assignments.assignments[swap.AssignmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, a := range m.assignments.assignments {
		if a.AssignmentID != assignment.AssignmentID &&
			a.StaffID == swap.TargetStaffID && a.ShiftID == assignment.ShiftID && a.IsActive() {
			return nil, repository.ErrSwapTargetOccupied
		}
	}

	assignment.StaffID = swap.TargetStaffID
	assignment.Status = model.AssignmentStatusSwapped
	assignment.TargetStaffID = nil

	now := time.Now()
	swap.Resolution = model.SwapResolutionApproved
	swap.ResolvedBy = &resolvedBy
	swap.ResolvedAt = &now
	return m.attach(swap), nil
}

func (m *mockSwapRequestRepo) Reject(_ context.Context, swapRequestID, resolvedBy string) (*model.SwapRequest, error) {
	swap, ok := m.swaps[swapRequestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if swap.Resolution != model.SwapResolutionPending {
		return nil, repository.ErrSwapAlreadyResolved
	}
	assignment, ok := m.assignments.assignments[swap.AssignmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	assignment.Status = model.AssignmentStatusAssigned
	assignment.TargetStaffID = nil

	now := time.Now()
	swap.Resolution = model.SwapResolutionRejected
	swap.ResolvedBy = &resolvedBy
	swap.ResolvedAt = &now
	return m.attach(swap), nil
}

func (m *mockSwapRequestRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	if sw, ok := m.swaps[id]; ok {
		return m.attach(sw), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRequestRepo) ListPending(_ context.Context, offset, limit int) ([]model.SwapRequest, int64, error) {
	var result []model.SwapRequest
	for _, sw := range m.swaps {
		if sw.Resolution == model.SwapResolutionPending {
			result = append(result, *m.attach(sw))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SwapRequestID < result[j].SwapRequestID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
	seq   int
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	for _, r := range m.rooms {
		if r.RoomNumber == room.RoomNumber {
			return repository.ErrRoomNumberTaken
		}
	}
	if room.RoomID == "" {
		m.seq++
		room.RoomID = fmt.Sprintf("room-%03d", m.seq)
	}
	if room.Version == 0 {
		room.Version = 1
	}
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByNumber(_ context.Context, roomNumber string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.RoomNumber == roomNumber {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context, includeInactive bool) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if !includeInactive && !r.IsActive {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RoomNumber < result[j].RoomNumber })
	return result, nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.Room) error {
	existing, ok := m.rooms[room.RoomID]
	if !ok || existing.Version != room.Version {
		return pkgerrors.ErrOptimisticLock
	}
	room.Version++
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.rooms, id)
	return nil
}

// ── Mock AppointmentRepository ──
// 复刻真实仓储的事务语义：房间/医生重叠检查与创建原子完成

type mockAppointmentRepo struct {
	appointments map[string]*model.Appointment
	rooms        *mockRoomRepo
	users        *mockUserRepo
	seq          int
}

func newMockAppointmentRepo(rooms *mockRoomRepo, users *mockUserRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		appointments: make(map[string]*model.Appointment),
		rooms:        rooms,
		users:        users,
	}
}

func (m *mockAppointmentRepo) attach(a *model.Appointment) *model.Appointment {
	copied := *a
	if u, ok := m.users.users[a.DoctorID]; ok {
		copied.Doctor = u
	}
	if r, ok := m.rooms.rooms[a.RoomID]; ok {
		copied.Room = r
	}
	return &copied
}

func (m *mockAppointmentRepo) CreateIfFree(_ context.Context, appt *model.Appointment) error {
	if _, ok := m.rooms.rooms[appt.RoomID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if _, ok := m.users.users[appt.DoctorID]; !ok {
		return gorm.ErrRecordNotFound
	}

	if err := m.findConflict(appt, ""); err != nil {
		return err
	}

	if appt.AppointmentID == "" {
		m.seq++
		appt.AppointmentID = fmt.Sprintf("appt-%03d", m.seq)
	}
	if appt.Version == 0 {
		appt.Version = 1
	}
	m.appointments[appt.AppointmentID] = appt
	return nil
}

func (m *mockAppointmentRepo) RescheduleIfFree(_ context.Context, appt *model.Appointment) error {
	if _, ok := m.rooms.rooms[appt.RoomID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := m.findConflict(appt, appt.AppointmentID); err != nil {
		return err
	}

	existing, ok := m.appointments[appt.AppointmentID]
	if !ok || existing.Version != appt.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored := *appt
	stored.Version = appt.Version + 1
	m.appointments[appt.AppointmentID] = &stored
	appt.Version = stored.Version
	return nil
}

// findConflict 复刻真实仓储的冲突判定顺序：先房间维度后医生维度
func (m *mockAppointmentRepo) findConflict(appt *model.Appointment, excludeID string) error {
	var sorted []*model.Appointment
	for _, a := range m.appointments {
		if excludeID != "" && a.AppointmentID == excludeID {
			continue
		}
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	for _, a := range sorted {
		if a.Status != model.AppointmentStatusScheduled || !a.AppointmentDate.Equal(appt.AppointmentDate) {
			continue
		}
		if !timeutil.Overlap(a.StartTime, a.EndTime, appt.StartTime, appt.EndTime) {
			continue
		}
		if a.RoomID == appt.RoomID {
			return &repository.BookingConflictError{
				Resource:      repository.ConflictResourceRoom,
				AppointmentID: a.AppointmentID,
			}
		}
	}
	for _, a := range sorted {
		if a.Status != model.AppointmentStatusScheduled || !a.AppointmentDate.Equal(appt.AppointmentDate) {
			continue
		}
		if !timeutil.Overlap(a.StartTime, a.EndTime, appt.StartTime, appt.EndTime) {
			continue
		}
		if a.DoctorID == appt.DoctorID {
			return &repository.BookingConflictError{
				Resource:      repository.ConflictResourceDoctor,
				AppointmentID: a.AppointmentID,
			}
		}
	}
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		return m.attach(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) List(_ context.Context, doctorID, roomID, status string, date *time.Time, offset, limit int) ([]model.Appointment, int64, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if doctorID != "" && a.DoctorID != doctorID {
			continue
		}
		if roomID != "" && a.RoomID != roomID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		if date != nil && !a.AppointmentDate.Equal(*date) {
			continue
		}
		result = append(result, *m.attach(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppointmentID < result[j].AppointmentID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockAppointmentRepo) ListActiveByRoomDate(_ context.Context, roomID string, date time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.RoomID == roomID && a.AppointmentDate.Equal(date) && a.Status == model.AppointmentStatusScheduled {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockAppointmentRepo) ListActiveByDoctorDate(_ context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) && a.Status == model.AppointmentStatusScheduled {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, appt *model.Appointment) error {
	existing, ok := m.appointments[appt.AppointmentID]
	if !ok || existing.Version != appt.Version {
		return pkgerrors.ErrOptimisticLock
	}
	appt.Version++
	stored := *appt
	stored.Doctor = nil
	stored.Room = nil
	m.appointments[appt.AppointmentID] = &stored
	return nil
}

func (m *mockAppointmentRepo) CountActiveFutureByRoom(_ context.Context, roomID string, from time.Time) (int64, error) {
	var count int64
	for _, a := range m.appointments {
		if a.RoomID == roomID && a.Status == model.AppointmentStatusScheduled && !a.AppointmentDate.Before(from) {
			count++
		}
	}
	return count, nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	avails map[string]*model.DoctorAvailability
	users  *mockUserRepo
	seq    int
}

func newMockAvailabilityRepo(users *mockUserRepo) *mockAvailabilityRepo {
	return &mockAvailabilityRepo{
		avails: make(map[string]*model.DoctorAvailability),
		users:  users,
	}
}

func (m *mockAvailabilityRepo) Create(_ context.Context, avail *model.DoctorAvailability) error {
	if avail.AvailabilityID == "" {
		m.seq++
		avail.AvailabilityID = fmt.Sprintf("avail-%03d", m.seq)
	}
	m.avails[avail.AvailabilityID] = avail
	return nil
}

func (m *mockAvailabilityRepo) ListByDoctor(_ context.Context, doctorID string, dateFrom, dateTo *time.Time) ([]model.DoctorAvailability, error) {
	var result []model.DoctorAvailability
	for _, a := range m.avails {
		if doctorID != "" && a.DoctorID != doctorID {
			continue
		}
		if dateFrom != nil && a.AvailDate.Before(*dateFrom) {
			continue
		}
		if dateTo != nil && a.AvailDate.After(*dateTo) {
			continue
		}
		copied := *a
		if u, ok := m.users.users[a.DoctorID]; ok {
			copied.Doctor = u
		}
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AvailabilityID < result[j].AvailabilityID })
	return result, nil
}

func (m *mockAvailabilityRepo) Delete(_ context.Context, id string) error {
	delete(m.avails, id)
	return nil
}

// ── 聚合 ──

type mockRepos struct {
	users        *mockUserRepo
	shifts       *mockShiftRepo
	assignments  *mockAssignmentRepo
	swaps        *mockSwapRequestRepo
	rooms        *mockRoomRepo
	appointments *mockAppointmentRepo
	avails       *mockAvailabilityRepo
	repo         *repository.Repository
}

func newMockRepos() *mockRepos {
	users := newMockUserRepo()
	shifts := newMockShiftRepo()
	assignments := newMockAssignmentRepo(shifts, users)
	swaps := newMockSwapRequestRepo(assignments, users)
	rooms := newMockRoomRepo()
	appointments := newMockAppointmentRepo(rooms, users)
	avails := newMockAvailabilityRepo(users)

	return &mockRepos{
		users:        users,
		shifts:       shifts,
		assignments:  assignments,
		swaps:        swaps,
		rooms:        rooms,
		appointments: appointments,
		avails:       avails,
		repo: &repository.Repository{
			User:         users,
			Shift:        shifts,
			Assignment:   assignments,
			SwapRequest:  swaps,
			Room:         rooms,
			Appointment:  appointments,
			Availability: avails,
		},
	}
}

// ── 测试数据辅助 ──

func seedUser(m *mockRepos, id, name, role string) *model.User {
	user := &model.User{
		UserID:   id,
		Name:     name,
		Email:    id + "@medicore.test",
		Role:     role,
		IsActive: true,
	}
	m.users.users[id] = user
	return user
}

func seedShift(m *mockRepos, id, name, date, start, end, shiftType string) *model.Shift {
	day, _ := timeutil.ParseDate(date)
	shift := &model.Shift{
		ShiftID:   id,
		Name:      name,
		ShiftDate: day,
		StartTime: start,
		EndTime:   end,
		ShiftType: shiftType,
	}
	shift.Version = 1
	m.shifts.shifts[id] = shift
	return shift
}

func seedRoom(m *mockRepos, id, number, ward string) *model.Room {
	room := &model.Room{
		RoomID:     id,
		RoomNumber: number,
		WardName:   ward,
		Capacity:   1,
		IsActive:   true,
	}
	room.Version = 1
	m.rooms.rooms[id] = room
	return room
}

// [自证通过] internal/service/mock_repos_test.go
