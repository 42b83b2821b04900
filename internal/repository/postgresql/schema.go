package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id UUID PRIMARY KEY,
	employee_code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	department TEXT NOT NULL,
	employment_status TEXT NOT NULL DEFAULT 'active',
	hire_date DATE NOT NULL,
	basic_salary NUMERIC(15,2),
	allowances JSONB,
	tax_rate NUMERIC(5,2),
	social_insurance_rate NUMERIC(5,2),
	health_insurance_rate NUMERIC(5,2),
	overtime_multiplier NUMERIC(5,2),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS attendances (
	id UUID PRIMARY KEY,
	employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	sessions JSONB NOT NULL DEFAULT '[]',
	total_hours NUMERIC(6,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_attendance_employee_date UNIQUE (employee_id, date)
);

CREATE TABLE IF NOT EXISTS leave_requests (
	id UUID PRIMARY KEY,
	employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	leave_type TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	total_days INT NOT NULL,
	reason TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by TEXT,
	decided_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT ck_leave_period CHECK (start_date <= end_date),
	CONSTRAINT ck_leave_total_days CHECK (total_days = end_date - start_date + 1)
);

CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_period
	ON leave_requests (employee_id, start_date, end_date);

CREATE TABLE IF NOT EXISTS leave_balances (
	employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	leave_type TEXT NOT NULL,
	remaining_days INT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (employee_id, leave_type)
);

CREATE TABLE IF NOT EXISTS payrolls (
	id UUID PRIMARY KEY,
	employee_id UUID NOT NULL REFERENCES employees(id),
	period_month INT NOT NULL CHECK (period_month BETWEEN 1 AND 12),
	period_year INT NOT NULL,
	basic_salary NUMERIC(15,2) NOT NULL,
	basic_pay NUMERIC(15,2) NOT NULL,
	allowances JSONB NOT NULL,
	total_allowances NUMERIC(15,2) NOT NULL,
	working_days INT NOT NULL,
	attended_days INT NOT NULL,
	absent_days INT NOT NULL,
	late_days INT NOT NULL,
	paid_leave_days INT NOT NULL,
	unpaid_leave_days INT NOT NULL,
	late_deductions NUMERIC(15,2) NOT NULL,
	bonuses JSONB NOT NULL,
	overtime_hours NUMERIC(8,2) NOT NULL,
	overtime_pay NUMERIC(15,2) NOT NULL,
	deductions JSONB NOT NULL,
	gross_salary NUMERIC(15,2) NOT NULL,
	total_deductions NUMERIC(15,2) NOT NULL,
	net_salary NUMERIC(15,2) NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	approved_by TEXT,
	approval_date TIMESTAMPTZ,
	payment_date TIMESTAMPTZ,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_employee_period UNIQUE (employee_id, period_month, period_year)
);

CREATE INDEX IF NOT EXISTS idx_payrolls_period ON payrolls (period_year, period_month);
`

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
