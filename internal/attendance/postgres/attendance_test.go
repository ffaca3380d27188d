package attendance_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dayflow-hq/dayflow/internal/attendance"
	attendancePostgres "github.com/dayflow-hq/dayflow/internal/attendance/postgres"
)

func TestAttendancePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Postgres Suite")
}

// Minimal employee and user rows for the join queries.
type testEmployee struct {
	ID         int64  `gorm:"primaryKey"`
	UserID     int64  `gorm:"column:user_id"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
	Department string `gorm:"column:department"`
}

func (testEmployee) TableName() string { return "employees" }

type testUser struct {
	ID           int64  `gorm:"primaryKey"`
	EmployeeCode string `gorm:"column:employee_code"`
}

func (testUser) TableName() string { return "users" }

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.Local)
}

var _ = Describe("Attendance Repository", func() {
	var (
		db   *gorm.DB
		repo *attendancePostgres.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&attendance.Record{}, &testEmployee{}, &testUser{})
		Expect(err).NotTo(HaveOccurred())

		err = db.Create(&testUser{ID: 10, EmployeeCode: "EMP001"}).Error
		Expect(err).NotTo(HaveOccurred())
		err = db.Create(&testEmployee{ID: 1, UserID: 10, FirstName: "Priya", LastName: "Sharma", Department: "Engineering"}).Error
		Expect(err).NotTo(HaveOccurred())
		err = db.Create(&testEmployee{ID: 2, UserID: 11, FirstName: "Rohan", LastName: "Mehta", Department: "Sales"}).Error
		Expect(err).NotTo(HaveOccurred())

		repo = attendancePostgres.NewRepository(db)
	})

	Describe("Create and lookup", func() {
		It("should find a record by employee and date", func() {
			err := repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent})
			Expect(err).NotTo(HaveOccurred())

			rec, err := repo.GetByEmployeeAndDate(1, day(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).NotTo(BeNil())
			Expect(rec.Status).To(Equal(attendance.StatusPresent))
		})

		It("should return nil for a day with no record", func() {
			rec, err := repo.GetByEmployeeAndDate(1, day(11))
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).To(BeNil())
		})

		It("should reject a second record for the same employee and day", func() {
			err := repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent})
			Expect(err).NotTo(HaveOccurred())

			err = repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusHalfDay})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("should persist amended fields", func() {
			rec := &attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent, WorkingHours: 8}
			Expect(repo.Create(rec)).To(Succeed())

			rec.Status = attendance.StatusHalfDay
			rec.WorkingHours = 4.5
			Expect(repo.Update(rec)).To(Succeed())

			stored, err := repo.GetByID(rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(attendance.StatusHalfDay))
			Expect(stored.WorkingHours).To(Equal(4.5))
		})
	})

	Describe("ListByEmployee", func() {
		BeforeEach(func() {
			for d := 10; d <= 14; d++ {
				Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(d), Status: attendance.StatusPresent})).To(Succeed())
			}
			Expect(repo.Create(&attendance.Record{EmployeeID: 2, Date: day(10), Status: attendance.StatusPresent})).To(Succeed())
		})

		It("should restrict to the date range and order latest first", func() {
			from, to := day(11), day(13)
			records, total, err := repo.ListByEmployee(1, &from, &to, 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(records[0].Date.Day()).To(Equal(13))
			Expect(records[2].Date.Day()).To(Equal(11))
		})

		It("should paginate", func() {
			records, total, err := repo.ListByEmployee(1, nil, nil, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(5)))
			Expect(records).To(HaveLen(2))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent})).To(Succeed())
			Expect(repo.Create(&attendance.Record{EmployeeID: 2, Date: day(10), Status: attendance.StatusHalfDay})).To(Succeed())
		})

		It("should join the employee name and department", func() {
			records, total, err := repo.List(attendance.ListQuery{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))

			names := []string{records[0].EmployeeName, records[1].EmployeeName}
			Expect(names).To(ContainElement("Priya Sharma"))
			Expect(names).To(ContainElement("Rohan Mehta"))
		})

		It("should filter by department", func() {
			records, total, err := repo.List(attendance.ListQuery{Department: "Sales", Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(records[0].Department).To(Equal("Sales"))
		})

		It("should filter by status", func() {
			_, total, err := repo.List(attendance.ListQuery{Status: attendance.StatusHalfDay, Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})
	})

	Describe("EmployeeStats", func() {
		BeforeEach(func() {
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent, WorkingHours: 8, IsLate: true})).To(Succeed())
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(11), Status: attendance.StatusPresent, WorkingHours: 8.5})).To(Succeed())
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(12), Status: attendance.StatusHalfDay, WorkingHours: 4})).To(Succeed())
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(13), Status: attendance.StatusLeave})).To(Succeed())
		})

		It("should count statuses and sum hours over the range", func() {
			stats, err := repo.EmployeeStats(1, day(1), day(31))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.PresentDays).To(Equal(int64(2)))
			Expect(stats.HalfDays).To(Equal(int64(1)))
			Expect(stats.LeaveDays).To(Equal(int64(1)))
			Expect(stats.LateDays).To(Equal(int64(1)))
			Expect(stats.TotalWorkingHours).To(Equal(20.5))
		})

		It("should return zeros outside the range", func() {
			stats, err := repo.EmployeeStats(1, day(20), day(25))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.PresentDays).To(Equal(int64(0)))
			Expect(stats.TotalWorkingHours).To(Equal(0.0))
		})
	})

	Describe("Overview", func() {
		BeforeEach(func() {
			Expect(repo.Create(&attendance.Record{EmployeeID: 1, Date: day(10), Status: attendance.StatusPresent, IsLate: true})).To(Succeed())
			Expect(repo.Create(&attendance.Record{EmployeeID: 2, Date: day(10), Status: attendance.StatusHalfDay})).To(Succeed())
		})

		It("should group records by status and department", func() {
			stats, err := repo.Overview(day(10), day(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.StatusCounts[attendance.StatusPresent]).To(Equal(int64(1)))
			Expect(stats.StatusCounts[attendance.StatusHalfDay]).To(Equal(int64(1)))
			Expect(stats.DepartmentCounts["Engineering"][attendance.StatusPresent]).To(Equal(int64(1)))
			Expect(stats.DepartmentCounts["Sales"][attendance.StatusHalfDay]).To(Equal(int64(1)))
			Expect(stats.LateCount).To(Equal(int64(1)))
		})
	})

	Describe("Employee resolution", func() {
		It("should resolve a profile by user id", func() {
			id, err := repo.EmployeeIDByUserID(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(1)))
		})

		It("should resolve a profile by employee code", func() {
			id, err := repo.EmployeeIDByCode("EMP001")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(1)))
		})

		It("should report whether an employee exists", func() {
			exists, err := repo.EmployeeExists(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.EmployeeExists(99)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})
