package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dayflow-hq/dayflow/internal/attendance"
	"github.com/dayflow-hq/dayflow/internal/auth"
	"github.com/dayflow-hq/dayflow/internal/dashboard"
	"github.com/dayflow-hq/dayflow/internal/employee"
	"github.com/dayflow-hq/dayflow/internal/leave"
	"github.com/dayflow-hq/dayflow/internal/payroll"
	"github.com/dayflow-hq/dayflow/internal/transport/middleware"
	"github.com/dayflow-hq/dayflow/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Attendance *attendance.Handler
	Leave      *leave.Handler
	Payroll    *payroll.Handler
	Dashboard  *dashboard.Handler
}

// RegisterAllRoutes mounts the full API under /api/v1.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, uploadsDir string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded profile pictures.
	if uploadsDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/signup", h.Auth.SignUp)
			sr.Post("/signin", h.Auth.SignIn)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Get("/verify-email", h.Auth.VerifyEmail)
			sr.Post("/forgot-password", h.Auth.ForgotPassword)
			sr.Post("/reset-password", h.Auth.ResetPassword)
		})

		// Everything below requires a valid token.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Route("/employees", func(er chi.Router) {
				er.Get("/me", h.Employee.GetMyProfile)
				er.Patch("/me", h.Employee.UpdateMyProfile)
				er.Post("/me/profile-picture", h.Employee.UploadProfilePicture)
				er.Get("/me/documents", h.Employee.MyDocuments)
				er.Post("/me/documents", h.Employee.UploadDocument)

				er.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermEmployeeViewAll))
					ar.Get("/", h.Employee.ListEmployees)
					ar.Get("/departments", h.Employee.ListDepartments)
					ar.Get("/{id}", h.Employee.GetEmployee)
				})

				er.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermEmployeeManage))
					ar.Post("/", h.Employee.CreateEmployee)
					ar.Put("/{id}", h.Employee.UpdateEmployee)
				})

				er.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermEmployeeDeactivate))
					ar.Post("/{id}/deactivate", h.Employee.DeactivateEmployee)
				})

				er.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermEmployeeDelete))
					ar.Delete("/{id}", h.Employee.DeleteEmployee)
				})
			})

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Post("/check-in", h.Attendance.CheckIn)
				ar.Post("/check-out", h.Attendance.CheckOut)
				ar.Get("/me", h.Attendance.MyAttendance)

				ar.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermAttendanceViewAll))
					mr.Get("/", h.Attendance.List)
					mr.Get("/stats", h.Attendance.Stats)
				})

				ar.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermAttendanceMark))
					mr.Post("/mark", h.Attendance.Mark)
					mr.Put("/{id}", h.Attendance.UpdateRecord)
				})
			})

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", h.Leave.Apply)
				lr.Get("/me", h.Leave.MyLeaves)
				lr.Get("/balance", h.Leave.Balance)
				lr.Post("/{id}/cancel", h.Leave.Cancel)

				lr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermLeaveViewAll))
					mr.Get("/", h.Leave.List)
					mr.Get("/stats", h.Leave.Stats)
				})

				lr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermLeaveReview))
					mr.Patch("/{id}/approve", h.Leave.Approve)
					mr.Patch("/{id}/reject", h.Leave.Reject)
				})
			})

			pr.Route("/payroll", func(yr chi.Router) {
				yr.Get("/me", h.Payroll.MyPayroll)

				yr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermPayrollViewAll))
					mr.Get("/", h.Payroll.List)
					mr.Get("/stats", h.Payroll.Stats)
					mr.Get("/{id}", h.Payroll.Get)
				})

				yr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermPayrollManage))
					mr.Post("/", h.Payroll.Upsert)
					mr.Patch("/{id}/payment-status", h.Payroll.UpdatePaymentStatus)
				})

				yr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermPayrollGenerate))
					mr.Post("/generate", h.Payroll.Generate)
				})
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/me", h.Dashboard.Employee)
				dr.Get("/activity", h.Dashboard.Activity)

				dr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermDashboardAdmin))
					mr.Get("/admin", h.Dashboard.Admin)
				})
			})
		})
	})
}
