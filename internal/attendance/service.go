package attendance

import (
	"log/slog"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
)

// Repository defines the data access methods for attendance records.
type Repository interface {
	Create(rec *Record) error
	GetByID(id int64) (*Record, error)
	GetByEmployeeAndDate(employeeID int64, date time.Time) (*Record, error)
	Update(rec *Record) error
	ListByEmployee(employeeID int64, from, to *time.Time, page, limit int) ([]*Record, int64, error)
	List(q ListQuery) ([]*Record, int64, error)
	EmployeeStats(employeeID int64, from, to time.Time) (MonthStats, error)
	Overview(from, to time.Time) (OverviewStats, error)
}

// EmployeeResolver maps the caller's user account, or an admin-supplied
// identifier, to an employee profile ID.
type EmployeeResolver interface {
	EmployeeIDByUserID(userID int64) (int64, error)
	EmployeeIDByCode(code string) (int64, error)
	EmployeeExists(employeeID int64) (bool, error)
}

// Service handles attendance business logic.
type Service struct {
	repo     Repository
	resolver EmployeeResolver
	cfg      internal.AttendanceConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver EmployeeResolver, cfg internal.AttendanceConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckIn records today's arrival for the calling user. A second check-in
// on the same day is a conflict.
func (s *Service) CheckIn(userID int64, dto CheckInDTO) (*Record, error) {
	employeeID, err := s.resolver.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}

	now := s.now()
	today := StartOfDay(now)

	rec, err := s.repo.GetByEmployeeAndDate(employeeID, today)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.CheckIn != nil {
		return nil, internal.NewConflictError("already checked in today", internal.ErrCodeAlreadyCheckedIn)
	}

	isLate, lateBy := s.lateness(now, today)

	if rec == nil {
		rec = &Record{
			EmployeeID: employeeID,
			Date:       today,
		}
	}
	rec.CheckIn = &now
	rec.Status = StatusPresent
	rec.IsLate = isLate
	rec.LateByMinutes = lateBy
	rec.CheckInLocation = dto.Location

	if rec.ID == 0 {
		err = s.repo.Create(rec)
	} else {
		err = s.repo.Update(rec)
	}
	if err != nil {
		s.logger.Error("failed to save check-in", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("checked in", "employee_id", employeeID, "is_late", isLate, "late_by_minutes", lateBy)
	return rec, nil
}

// CheckOut records today's departure and derives the day's status from the
// hours worked. Short days below the half-day threshold keep the status set
// at check-in.
func (s *Service) CheckOut(userID int64, dto CheckOutDTO) (*Record, error) {
	employeeID, err := s.resolver.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}

	now := s.now()
	today := StartOfDay(now)

	rec, err := s.repo.GetByEmployeeAndDate(employeeID, today)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.CheckIn == nil {
		return nil, internal.NewBusinessRuleError("cannot check out without checking in first", internal.ErrCodeNotCheckedIn)
	}
	if rec.CheckOut != nil {
		return nil, internal.NewBusinessRuleError("already checked out today", internal.ErrCodeAlreadyCheckedOut)
	}

	rec.CheckOut = &now
	rec.CheckOutLocation = dto.Location
	rec.WorkingHours = RoundHours(now.Sub(*rec.CheckIn).Hours())

	switch {
	case rec.WorkingHours >= s.fullDayHours():
		rec.Status = StatusPresent
	case rec.WorkingHours >= s.halfDayHours():
		rec.Status = StatusHalfDay
	}

	if err := s.repo.Update(rec); err != nil {
		s.logger.Error("failed to save check-out", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("checked out", "employee_id", employeeID, "working_hours", rec.WorkingHours, "status", rec.Status)
	return rec, nil
}

// TodayForUser returns today's record, or nil when nothing was recorded.
func (s *Service) TodayForUser(userID int64) (*Record, error) {
	employeeID, err := s.resolver.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}
	return s.repo.GetByEmployeeAndDate(employeeID, StartOfDay(s.now()))
}

// MyAttendance lists the calling user's records with a stats rollup for the
// same window.
func (s *Service) MyAttendance(userID int64, from, to *time.Time, page, limit int) ([]*Record, int64, MonthStats, error) {
	employeeID, err := s.resolver.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, 0, MonthStats{}, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}

	records, total, err := s.repo.ListByEmployee(employeeID, from, to, page, limit)
	if err != nil {
		return nil, 0, MonthStats{}, err
	}

	statsFrom, statsTo := s.statsWindow(from, to)
	stats, err := s.repo.EmployeeStats(employeeID, statsFrom, statsTo)
	if err != nil {
		return nil, 0, MonthStats{}, err
	}

	return records, total, stats, nil
}

// MonthStatsForEmployee summarizes one employee's calendar month.
func (s *Service) MonthStatsForEmployee(employeeID int64, year int, month time.Month) (MonthStats, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return s.repo.EmployeeStats(employeeID, from, to)
}

// Mark upserts one employee-day on behalf of an admin.
func (s *Service) Mark(markerUserID int64, dto MarkAttendanceDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	employeeID, err := s.resolveTarget(dto)
	if err != nil {
		return nil, err
	}

	// Parse in local time so the day lines up with check-in records.
	date, _ := time.ParseInLocation("2006-01-02", dto.Date, time.Local)
	date = StartOfDay(date)

	rec, err := s.repo.GetByEmployeeAndDate(employeeID, date)
	if err != nil {
		return nil, err
	}
	created := rec == nil
	if created {
		rec = &Record{EmployeeID: employeeID, Date: date}
	}

	rec.Status = dto.Status
	rec.Remarks = dto.Remarks
	rec.IsManualEntry = true
	rec.MarkedByUserID = &markerUserID

	if dto.CheckIn != "" {
		t, _ := time.Parse(time.RFC3339, dto.CheckIn)
		rec.CheckIn = &t
	}
	if dto.CheckOut != "" {
		t, _ := time.Parse(time.RFC3339, dto.CheckOut)
		rec.CheckOut = &t
	}
	s.recomputeHours(rec)

	if created {
		err = s.repo.Create(rec)
	} else {
		err = s.repo.Update(rec)
	}
	if err != nil {
		s.logger.Error("failed to mark attendance", "error", err, "employee_id", employeeID, "date", dto.Date)
		return nil, err
	}

	s.logger.Info("attendance marked", "employee_id", employeeID, "date", dto.Date, "status", dto.Status, "marked_by", markerUserID)
	return rec, nil
}

// UpdateRecord edits an existing record by ID on behalf of an admin.
func (s *Service) UpdateRecord(markerUserID, recordID int64, dto UpdateAttendanceDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	rec, err := s.repo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	if dto.Status != nil {
		rec.Status = *dto.Status
	}
	if dto.Remarks != nil {
		rec.Remarks = *dto.Remarks
	}
	if dto.CheckIn != nil {
		if *dto.CheckIn == "" {
			rec.CheckIn = nil
		} else {
			t, _ := time.Parse(time.RFC3339, *dto.CheckIn)
			rec.CheckIn = &t
		}
	}
	if dto.CheckOut != nil {
		if *dto.CheckOut == "" {
			rec.CheckOut = nil
		} else {
			t, _ := time.Parse(time.RFC3339, *dto.CheckOut)
			rec.CheckOut = &t
		}
	}
	s.recomputeHours(rec)

	rec.IsManualEntry = true
	rec.MarkedByUserID = &markerUserID

	if err := s.repo.Update(rec); err != nil {
		return nil, err
	}

	s.logger.Info("attendance record updated", "record_id", recordID, "marked_by", markerUserID)
	return rec, nil
}

// List returns records across employees for admins.
func (s *Service) List(q ListQuery) ([]*Record, int64, error) {
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, 0, internal.NewValidationError("invalid status filter", internal.ErrCodeValidationFailed)
	}
	return s.repo.List(q)
}

// Overview returns the admin stats rollup for a window.
func (s *Service) Overview(from, to time.Time) (OverviewStats, error) {
	if to.Before(from) {
		return OverviewStats{}, internal.NewValidationError("date range end precedes start", internal.ErrCodeInvalidDateRange)
	}
	return s.repo.Overview(from, to)
}

func (s *Service) resolveTarget(dto MarkAttendanceDTO) (int64, error) {
	if dto.EmployeeID != nil {
		exists, err := s.resolver.EmployeeExists(*dto.EmployeeID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
		}
		return *dto.EmployeeID, nil
	}
	employeeID, err := s.resolver.EmployeeIDByCode(dto.EmployeeCode)
	if err != nil {
		return 0, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return employeeID, nil
}

func (s *Service) lateness(now, dayStart time.Time) (bool, int) {
	cutoff := dayStart.Add(
		time.Duration(s.cfg.LateCutoffHour)*time.Hour +
			time.Duration(s.cfg.LateCutoffMinute)*time.Minute)
	if !now.After(cutoff) {
		return false, 0
	}
	return true, int(now.Sub(cutoff).Minutes())
}

func (s *Service) recomputeHours(rec *Record) {
	if rec.CheckIn == nil || rec.CheckOut == nil {
		rec.WorkingHours = 0
		return
	}
	rec.WorkingHours = RoundHours(rec.CheckOut.Sub(*rec.CheckIn).Hours())
}

func (s *Service) fullDayHours() float64 {
	if s.cfg.FullDayHours > 0 {
		return s.cfg.FullDayHours
	}
	return 8
}

func (s *Service) halfDayHours() float64 {
	if s.cfg.HalfDayHours > 0 {
		return s.cfg.HalfDayHours
	}
	return 4
}

// statsWindow defaults to the current calendar month when the list filters
// give no range.
func (s *Service) statsWindow(from, to *time.Time) (time.Time, time.Time) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	return start, end
}
