package dashboard

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dayflow-hq/dayflow/internal/attendance"
	"github.com/dayflow-hq/dayflow/internal/employee"
	"github.com/dayflow-hq/dayflow/internal/leave"
	"github.com/dayflow-hq/dayflow/internal/payroll"
)

// The dashboard composes read views over the other feature services.

type EmployeeService interface {
	GetMyProfile(userID int64) (*employee.Employee, error)
	CountByStatus(status string) (int64, error)
	CountByDepartment() (map[string]int64, error)
	Recent(limit int) ([]*employee.Employee, error)
}

type AttendanceService interface {
	TodayForUser(userID int64) (*attendance.Record, error)
	MyAttendance(userID int64, from, to *time.Time, page, limit int) ([]*attendance.Record, int64, attendance.MonthStats, error)
	MonthStatsForEmployee(employeeID int64, year int, month time.Month) (attendance.MonthStats, error)
	Overview(from, to time.Time) (attendance.OverviewStats, error)
}

type LeaveService interface {
	MyLeaves(userID int64, status string, page, limit int) ([]*leave.Request, int64, *employee.LeaveBalance, error)
	List(q leave.ListQuery) ([]*leave.Request, int64, error)
	Stats(from, to time.Time) (leave.Stats, error)
	OnLeaveToday() ([]*leave.Request, error)
}

type PayrollService interface {
	CurrentForUser(userID int64) (*payroll.Record, error)
	PeriodStats(month, year int) (payroll.Stats, error)
}

// EmployeeDashboard is the self-service landing view.
type EmployeeDashboard struct {
	TodayAttendance *attendance.Record    `json:"today_attendance"`
	TodayStatus     string                `json:"today_status"`
	MonthStats      attendance.MonthStats `json:"month_stats"`
	LeaveBalance    employee.LeaveBalance `json:"leave_balance"`
	PendingLeaves   []*leave.Request      `json:"pending_leaves"`
	RecentLeaves    []*leave.Request      `json:"recent_leaves"`
	CurrentPayroll  *payroll.Record       `json:"current_payroll,omitempty"`
}

// Headcount summarizes the workforce by employment status.
type Headcount struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	OnLeave    int64 `json:"on_leave"`
	Resigned   int64 `json:"resigned"`
	Terminated int64 `json:"terminated"`
}

// TodayAttendance is the admin rollup of today's records. NotMarked counts
// working employees with no record yet, which the system reads as absent.
type TodayAttendance struct {
	StatusCounts map[string]int64 `json:"status_counts"`
	LateCount    int64            `json:"late_count"`
	NotMarked    int64            `json:"not_marked"`
}

// AdminDashboard is the HR/Admin landing view.
type AdminDashboard struct {
	Headcount        Headcount        `json:"headcount"`
	DepartmentCounts map[string]int64 `json:"department_counts"`
	TodayAttendance  TodayAttendance  `json:"today_attendance"`
	PendingLeaves    int64            `json:"pending_leaves"`
	MonthLeaveStats  leave.Stats      `json:"month_leave_stats"`
	MonthPayroll     payroll.Stats    `json:"month_payroll_stats"`
	OnLeaveToday     []*leave.Request `json:"on_leave_today"`
}

type Service struct {
	employees  EmployeeService
	attendance AttendanceService
	leaves     LeaveService
	payrolls   PayrollService
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(employees EmployeeService, att AttendanceService, leaves LeaveService, payrolls PayrollService, logger *slog.Logger) *Service {
	return &Service{
		employees:  employees,
		attendance: att,
		leaves:     leaves,
		payrolls:   payrolls,
		logger:     logger,
		now:        time.Now,
	}
}

// ForEmployee builds the self-service landing view for one user.
func (s *Service) ForEmployee(userID int64) (*EmployeeDashboard, error) {
	emp, err := s.employees.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dash := &EmployeeDashboard{LeaveBalance: emp.LeaveBalance}

	today, err := s.attendance.TodayForUser(userID)
	if err != nil {
		return nil, err
	}
	dash.TodayAttendance = today
	dash.TodayStatus = attendance.StatusAbsent
	if today != nil {
		dash.TodayStatus = today.Status
	}

	dash.MonthStats, err = s.attendance.MonthStatsForEmployee(emp.ID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	pending, _, _, err := s.leaves.MyLeaves(userID, leave.StatusPending, 1, 5)
	if err != nil {
		return nil, err
	}
	dash.PendingLeaves = pending

	recent, _, _, err := s.leaves.MyLeaves(userID, "", 1, 5)
	if err != nil {
		return nil, err
	}
	dash.RecentLeaves = recent

	current, err := s.payrolls.CurrentForUser(userID)
	if err != nil {
		s.logger.Warn("failed to load current payroll for dashboard", "error", err, "user_id", userID)
	} else {
		dash.CurrentPayroll = current
	}

	return dash, nil
}

// ForAdmin builds the HR/Admin landing view.
func (s *Service) ForAdmin() (*AdminDashboard, error) {
	dash := &AdminDashboard{}

	var err error
	if dash.Headcount, err = s.headcount(); err != nil {
		return nil, err
	}
	if dash.DepartmentCounts, err = s.employees.CountByDepartment(); err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	overview, err := s.attendance.Overview(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	var marked int64
	for _, count := range overview.StatusCounts {
		marked += count
	}
	working := dash.Headcount.Active + dash.Headcount.OnLeave
	notMarked := working - marked
	if notMarked < 0 {
		notMarked = 0
	}
	dash.TodayAttendance = TodayAttendance{
		StatusCounts: overview.StatusCounts,
		LateCount:    overview.LateCount,
		NotMarked:    notMarked,
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if dash.MonthLeaveStats, err = s.leaves.Stats(monthStart, monthEnd); err != nil {
		return nil, err
	}
	dash.PendingLeaves = dash.MonthLeaveStats.PendingCount

	if dash.MonthPayroll, err = s.payrolls.PeriodStats(int(now.Month()), now.Year()); err != nil {
		return nil, err
	}

	if dash.OnLeaveToday, err = s.leaves.OnLeaveToday(); err != nil {
		return nil, err
	}

	return dash, nil
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	Type   string    `json:"type"`
	Action string    `json:"action"`
	Status string    `json:"status,omitempty"`
	Date   time.Time `json:"date"`
}

// RecentActivity builds the activity feed. Reviewers see organization-wide
// leave applications and new joiners; everyone else sees their own leaves
// and attendance.
func (s *Service) RecentActivity(userID int64, organizationWide bool, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	half := limit / 2
	if half < 1 {
		half = 1
	}

	var activities []Activity
	if organizationWide {
		recent, _, err := s.leaves.List(leave.ListQuery{Page: 1, Limit: half})
		if err != nil {
			return nil, err
		}
		for _, req := range recent {
			activities = append(activities, Activity{
				Type:   "leave",
				Action: fmt.Sprintf("%s applied for %s leave", req.EmployeeName, req.LeaveType),
				Status: req.Status,
				Date:   req.CreatedAt,
			})
		}

		joiners, err := s.employees.Recent(half)
		if err != nil {
			return nil, err
		}
		for _, emp := range joiners {
			activities = append(activities, Activity{
				Type:   "employee",
				Action: fmt.Sprintf("%s joined as %s", emp.FullName(), emp.Designation),
				Date:   emp.CreatedAt,
			})
		}
	} else {
		myLeaves, _, _, err := s.leaves.MyLeaves(userID, "", 1, half)
		if err != nil {
			return nil, err
		}
		for _, req := range myLeaves {
			activities = append(activities, Activity{
				Type:   "leave",
				Action: fmt.Sprintf("You applied for %s leave", req.LeaveType),
				Status: req.Status,
				Date:   req.CreatedAt,
			})
		}

		records, _, _, err := s.attendance.MyAttendance(userID, nil, nil, 1, half)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			activities = append(activities, Activity{
				Type:   "attendance",
				Action: fmt.Sprintf("Attendance marked as %s", rec.Status),
				Date:   rec.Date,
			})
		}
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *Service) headcount() (Headcount, error) {
	var hc Headcount
	counts := []struct {
		status string
		target *int64
	}{
		{employee.StatusActive, &hc.Active},
		{employee.StatusOnLeave, &hc.OnLeave},
		{employee.StatusResigned, &hc.Resigned},
		{employee.StatusTerminated, &hc.Terminated},
	}
	for _, c := range counts {
		count, err := s.employees.CountByStatus(c.status)
		if err != nil {
			return hc, err
		}
		*c.target = count
		hc.Total += count
	}
	return hc, nil
}
