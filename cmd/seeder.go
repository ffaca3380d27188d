package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/dayflow-hq/dayflow/internal/auth"
	"github.com/dayflow-hq/dayflow/internal/employee"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(gormpostgres.Open(cfg.Database.Source), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}

		if clearData {
			tables := []string{"payroll_records", "leave_requests", "attendance_records", "employees", "users"}
			for _, table := range tables {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUsers := []struct {
			Code        string
			Email       string
			Role        auth.Role
			FirstName   string
			LastName    string
			Department  string
			Designation string
		}{
			{"ADM001", "admin@dayflow.local", auth.RoleAdmin, "Asha", "Nair", "Operations", "System Administrator"},
			{"HR001", "hr@dayflow.local", auth.RoleHR, "Rohan", "Mehta", "Human Resources", "HR Manager"},
			{"EMP001", "employee@dayflow.local", auth.RoleEmployee, "Priya", "Sharma", "Engineering", "Software Engineer"},
		}

		for _, su := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", su.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", su.Email)
				continue
			}

			user := &auth.User{
				EmployeeCode:    su.Code,
				Email:           su.Email,
				PasswordHash:    string(hash),
				Role:            su.Role,
				IsActive:        true,
				IsEmailVerified: true,
			}
			if err := db.Create(user).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", su.Email, err)
			}

			profile := &employee.Employee{
				UserID:         user.ID,
				FirstName:      su.FirstName,
				LastName:       su.LastName,
				Department:     su.Department,
				Designation:    su.Designation,
				EmploymentType: employee.TypeFullTime,
				JoiningDate:    time.Now().AddDate(-1, 0, 0),
				Status:         employee.StatusActive,
				LeaveBalance: employee.LeaveBalance{
					Paid:   employee.DefaultPaidBalance,
					Sick:   employee.DefaultSickBalance,
					Casual: employee.DefaultCasualBalance,
				},
			}
			if err := db.Create(profile).Error; err != nil {
				log.Fatalf("failed to insert employee profile for %s: %v", su.Email, err)
			}

			fmt.Printf("Seeded %s user: %s (password: %s)\n", su.Role, su.Email, password)
		}

		fmt.Println("Seeding complete")
	},
}
