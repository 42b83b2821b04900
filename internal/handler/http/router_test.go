package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-payroll-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/hris-payroll-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
	} `json:"meta"`
}

type testServer struct {
	handler    http.Handler
	jwtService jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	archive, err := storage.NewLocalStorage(t.TempDir(), "/payslips")
	require.NoError(t, err)

	employeeRepo := sqlite.NewEmployeeRepository(store)
	attendanceRepo := sqlite.NewAttendanceRepository(store)
	requestRepo := sqlite.NewLeaveRequestRepository(store)
	balanceRepo := sqlite.NewLeaveBalanceRepository(store)
	payrollRepo := sqlite.NewPayrollRepository(store)

	payrollSvc := payrollService.NewPayrollService(
		store.Transactor(),
		payrollRepo,
		employeeRepo,
		payrollService.NewAggregator(attendanceRepo, requestRepo),
		archive,
		2,
	)

	jwtService := jwt.NewJWTService("router-test-secret", "1h")
	router := NewRouter(jwtService, Handlers{
		Employee:   NewEmployeeHandler(employeeService.NewEmployeeService(store.Transactor(), employeeRepo, balanceRepo)),
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(store.Transactor(), attendanceRepo, employeeRepo, attendance.DefaultPolicy)),
		Leave:      NewLeaveHandler(leaveService.NewLeaveService(store.Transactor(), requestRepo, balanceRepo, employeeRepo)),
		Payroll:    NewPayrollHandler(payrollSvc),
		Report:     NewReportHandler(reportService.NewReportService(payrollRepo)),
	}, RouterOptions{AppEnv: "test"})

	return &testServer{handler: router, jwtService: jwtService}
}

func (s *testServer) token(t *testing.T, role jwt.Role, employeeID *string) string {
	t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken("user-"+string(role), employeeID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) createEmployee(t *testing.T, manager, code string) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{
		"employee_code": code,
		"full_name":     "Employee " + code,
		"department":    "Engineering",
		"hire_date":     "2021-01-04",
		"salary": map[string]any{
			"basic_salary":          "3000",
			"allowances":            map[string]any{"transportation": "120", "food": "80"},
			"tax_rate":              "10",
			"social_insurance_rate": "0",
			"health_insurance_rate": "0",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/payrolls", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ManagerOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	employeeToken := s.token(t, jwt.RoleEmployee, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payrolls/generate", employeeToken, map[string]any{
		"employee_id": "e1", "period_month": 3, "period_year": 2024,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/reports/payroll?month=3&year=2024", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/employees", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// without an employee claim there is nothing of their own to list
	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ownID := "emp-own"
	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls", s.token(t, jwt.RoleEmployee, &ownID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_EmployeeEndpoints(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, jwt.RoleManager, nil)
	id := s.createEmployee(t, manager, "E-1")

	rec, env := s.do(t, http.MethodGet, "/api/v1/employees/"+id, manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"employee_code":"E-1"`)

	rec, env = s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{
		"employee_code": "E-1", "full_name": "Dup", "department": "Ops", "hire_date": "2022-01-01",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)

	rec, env = s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{"employee_code": "E-2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "full_name")

	rec, env = s.do(t, http.MethodGet, "/api/v1/employees/missing", manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+manager)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRouter_PayrollLifecycle(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, jwt.RoleManager, nil)
	id := s.createEmployee(t, manager, "E-1")

	generate := map[string]any{"employee_id": id, "period_month": 3, "period_year": 2024}
	rec, env := s.do(t, http.MethodPost, "/api/v1/payrolls/generate", manager, generate)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payroll struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payroll))
	assert.Equal(t, "draft", payroll.Status)

	rec, env = s.do(t, http.MethodPost, "/api/v1/payrolls/generate", manager, generate)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_PAYROLL", env.Error.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/payrolls/"+payroll.ID+"/pay", manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)

	rec, env = s.do(t, http.MethodPost, "/api/v1/payrolls/"+payroll.ID+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"approved_by":"user-manager"`)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/payrolls/"+payroll.ID+"/pay", manager, map[string]any{"payment_date": "2024-04-05"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(t, http.MethodDelete, "/api/v1/payrolls/"+payroll.ID, manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls/"+payroll.ID+"/payslip", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec, env = s.do(t, http.MethodGet, "/api/v1/payrolls?month=3&year=2024&status=paid", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.TotalItems)

	rec, env = s.do(t, http.MethodGet, "/api/v1/reports/payroll?month=3&year=2024", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"Engineering"`)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/reports/payroll?month=x&year=2024", manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MissingSalaryConfiguration(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, jwt.RoleAdmin, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/employees", manager, map[string]any{
		"employee_code": "E-9", "full_name": "No Salary", "department": "Ops", "hire_date": "2022-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env = s.do(t, http.MethodPost, "/api/v1/payrolls/generate", manager, map[string]any{
		"employee_id": created.ID, "period_month": 3, "period_year": 2024,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_SALARY_CONFIG", env.Error.Code)
}

func TestRouter_LeaveApproval(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, jwt.RoleManager, nil)
	id := s.createEmployee(t, manager, "E-1")
	employeeToken := s.token(t, jwt.RoleEmployee, &id)

	rec, env := s.do(t, http.MethodPost, "/api/v1/leaves", employeeToken, map[string]any{
		"leave_type": "annual", "start_date": "2024-04-01", "end_date": "2024-04-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var request struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
		TotalDays  int    `json:"total_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &request))
	assert.Equal(t, id, request.EmployeeID)
	assert.Equal(t, 3, request.TotalDays)

	rec, _ = s.do(t, http.MethodPatch, "/api/v1/leaves/"+request.ID+"/status", employeeToken, map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPatch, "/api/v1/leaves/"+request.ID+"/status", manager, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/leave-balance", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Balances map[string]int `json:"balances"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, 17, balance.Balances["annual"])

	rec, env = s.do(t, http.MethodPatch, "/api/v1/leaves/"+request.ID+"/period", employeeToken, map[string]any{
		"start_date": "2024-04-01", "end_date": "2024-04-10",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "APPROVED_PERIOD_CHANGE", env.Error.Code)

	rec, env = s.do(t, http.MethodPatch, "/api/v1/leaves/"+request.ID+"/period", manager, map[string]any{
		"start_date": "2024-04-01", "end_date": "2024-05-15",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error.Code)
	assert.Equal(t, "20", env.Error.Details["available"])
	assert.Equal(t, "45", env.Error.Details["requested"])
}

func TestRouter_EmployeeTokensAreScopedToTheirEmployee(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, jwt.RoleManager, nil)
	ownID := s.createEmployee(t, manager, "E-O")
	otherID := s.createEmployee(t, manager, "E-V")
	own := s.token(t, jwt.RoleEmployee, &ownID)
	other := s.token(t, jwt.RoleEmployee, &otherID)

	rec, env := s.do(t, http.MethodPost, "/api/v1/leaves", other, map[string]any{
		"leave_type": "annual", "start_date": "2024-04-01", "end_date": "2024-04-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var leaveRequest struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &leaveRequest))

	rec, _ = s.do(t, http.MethodPatch, "/api/v1/leaves/"+leaveRequest.ID+"/status", manager, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/payrolls/generate", manager, map[string]any{
		"employee_id": otherID, "period_month": 3, "period_year": 2024,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var otherPayroll struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &otherPayroll))

	rec, _ = s.do(t, http.MethodPatch, "/api/v1/leaves/"+leaveRequest.ID+"/period", own, map[string]any{
		"start_date": "2024-04-01", "end_date": "2024-04-20",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/leaves/"+leaveRequest.ID, own, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/leaves", own, map[string]any{
		"employee_id": otherID, "leave_type": "annual", "start_date": "2024-06-03", "end_date": "2024-06-04",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", own, map[string]any{"employee_id": otherID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/attendance?employee_id="+otherID+"&from=2024-03-01&to=2024-03-31", own, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls?employee_id="+otherID, own, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/payrolls", own, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(env.Data))

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls/"+otherPayroll.ID, own, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls/"+otherPayroll.ID+"/payslip", own, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+otherID, own, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+otherID+"/leave-balance", own, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the owner still reaches their own records
	rec, _ = s.do(t, http.MethodGet, "/api/v1/payrolls/"+otherPayroll.ID, other, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", own, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(t, http.MethodGet, "/api/v1/employees/"+otherID+"/leave-balance", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Balances map[string]int `json:"balances"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, 17, balance.Balances["annual"])
}
