package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, migrates, and truncates all tables.
// Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.Migrate(ctx, db))
	truncateAllTables(t, db)

	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tables := []string{
		"payrolls",
		"leave_balances",
		"leave_requests",
		"attendances",
		"employees",
	}
	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}

	require.NoError(t, tx.Commit(ctx))
}

func createTestEmployee(t *testing.T, db *database.DB, code string) employee.Employee {
	t.Helper()

	emp, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FullName:     "Test " + code,
		Department:   "Engineering",
		HireDate:     time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Salary: &employee.SalaryConfiguration{
			BasicSalary:         decimal.NewFromInt(3000),
			Allowances:          employee.Allowances{Transportation: decimal.NewFromInt(100)},
			TaxRate:             decimal.NewFromInt(10),
			SocialInsuranceRate: decimal.Zero,
			HealthInsuranceRate: decimal.Zero,
			OvertimeMultiplier:  employee.DefaultOvertimeMultiplier,
		},
	})
	require.NoError(t, err)
	return emp
}
