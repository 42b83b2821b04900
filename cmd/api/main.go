package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-payroll-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/hris-payroll-go/internal/service/report"
)

// repositories is one storage backend.
type repositories struct {
	transactor database.Transactor
	employee   employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	request    leave.LeaveRequestRepository
	balance    leave.LeaveBalanceRepository
	payroll    payroll.PayrollRepository
	close      func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		store, err := sqlite.New(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &repositories{
			transactor: store.Transactor(),
			employee:   sqlite.NewEmployeeRepository(store),
			attendance: sqlite.NewAttendanceRepository(store),
			request:    sqlite.NewLeaveRequestRepository(store),
			balance:    sqlite.NewLeaveBalanceRepository(store),
			payroll:    sqlite.NewPayrollRepository(store),
			close:      func() { _ = store.Close() },
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			transactor: postgresql.NewTransactor(db),
			employee:   postgresql.NewEmployeeRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			request:    postgresql.NewLeaveRequestRepository(db),
			balance:    postgresql.NewLeaveBalanceRepository(db),
			payroll:    postgresql.NewPayrollRepository(db),
			close:      db.Close,
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx := context.Background()
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error connecting to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	payslipStorage, err := storage.NewLocalStorage(cfg.Payslip.StoragePath, cfg.Payslip.BaseURL)
	if err != nil {
		slog.Error("Failed to initialize payslip storage", "error", err)
		os.Exit(1)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	employeeSvc := employeeService.NewEmployeeService(repos.transactor, repos.employee, repos.balance)
	attendanceSvc := attendanceService.NewAttendanceService(repos.transactor, repos.attendance, repos.employee, attendance.DefaultPolicy)
	leaveSvc := leaveService.NewLeaveService(repos.transactor, repos.request, repos.balance, repos.employee)
	payrollSvc := payrollService.NewPayrollService(
		repos.transactor,
		repos.payroll,
		repos.employee,
		payrollService.NewAggregator(repos.attendance, repos.request),
		payslipStorage,
		cfg.Payroll.BulkConcurrency,
	)
	reportSvc := reportService.NewReportService(repos.payroll)

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
	}, appHTTP.RouterOptions{
		AppEnv:         cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	var scheduler *cron.Scheduler
	if cfg.Payroll.AutoGenerate {
		scheduler = cron.NewScheduler(time.UTC)
		if err := cron.NewPayrollJobs(payrollSvc).RegisterJobs(scheduler, cfg.Payroll.AutoGenerateSchedule); err != nil {
			slog.Error("Failed to register payroll jobs", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		if next, ok := scheduler.Next("generate_monthly_payrolls"); ok {
			slog.Info("Payroll auto-generation enabled", "next_run", next)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server stopped")
}
