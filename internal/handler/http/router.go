package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the server settings the router needs from config.
type RouterOptions struct {
	AppEnv         string
	AllowedOrigins []string
}

type Handlers struct {
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
	Report     ReportHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.AppEnv),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}", h.Employee.GetEmployee)
			r.Get("/{id}/leave-balance", h.Leave.GetBalance)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/", h.Employee.ListEmployees)
				r.Post("/", h.Employee.CreateEmployee)
				r.Put("/{id}/salary", h.Employee.SetSalaryConfiguration)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/clock-in", h.Attendance.ClockIn)
			r.Post("/clock-out", h.Attendance.ClockOut)
			r.Get("/", h.Attendance.List)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Post("/", h.Leave.SubmitRequest)
			r.Get("/", h.Leave.ListRequests)
			r.Get("/{id}", h.Leave.GetRequest)
			// Employees may only move their own pending requests
			r.Patch("/{id}/period", h.Leave.UpdatePeriod)

			// Manager only
			r.With(middleware.RequireManager).Patch("/{id}/status", h.Leave.UpdateStatus)
		})

		r.Route("/payrolls", func(r chi.Router) {
			r.Get("/", h.Payroll.ListPayrolls)
			r.Get("/{id}", h.Payroll.GetPayroll)
			r.Get("/{id}/payslip", h.Payroll.DownloadPayslip)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/generate", h.Payroll.GeneratePayroll)
				r.Post("/generate/bulk", h.Payroll.BulkGeneratePayroll)
				r.Put("/{id}", h.Payroll.UpdatePayroll)
				r.Post("/{id}/approve", h.Payroll.ApprovePayroll)
				r.Post("/{id}/pay", h.Payroll.MarkPaid)
				r.Delete("/{id}", h.Payroll.DeletePayroll)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireManager)
			r.Get("/payroll", h.Report.GetPayrollReport)
		})
	})
	return r
}
