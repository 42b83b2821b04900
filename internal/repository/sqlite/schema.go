package sqlite

// Money and rates are TEXT so that decimal values round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	employee_code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	department TEXT NOT NULL,
	employment_status TEXT NOT NULL DEFAULT 'active',
	hire_date TEXT NOT NULL,
	basic_salary TEXT,
	allowances TEXT,
	tax_rate TEXT,
	social_insurance_rate TEXT,
	health_insurance_rate TEXT,
	overtime_multiplier TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendances (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	sessions TEXT NOT NULL DEFAULT '[]',
	total_hours TEXT NOT NULL DEFAULT '0',
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CONSTRAINT uk_attendance_employee_date UNIQUE (employee_id, date)
);

CREATE TABLE IF NOT EXISTS leave_requests (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	leave_type TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	total_days INTEGER NOT NULL CHECK (total_days > 0),
	reason TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by TEXT,
	decided_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CONSTRAINT ck_leave_period CHECK (start_date <= end_date)
);

CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_period
	ON leave_requests (employee_id, start_date, end_date);

CREATE TABLE IF NOT EXISTS leave_balances (
	employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	leave_type TEXT NOT NULL,
	remaining_days INTEGER NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (employee_id, leave_type)
);

CREATE TABLE IF NOT EXISTS payrolls (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id),
	period_month INTEGER NOT NULL CHECK (period_month BETWEEN 1 AND 12),
	period_year INTEGER NOT NULL,
	basic_salary TEXT NOT NULL,
	basic_pay TEXT NOT NULL,
	allowances TEXT NOT NULL,
	total_allowances TEXT NOT NULL,
	working_days INTEGER NOT NULL,
	attended_days INTEGER NOT NULL,
	absent_days INTEGER NOT NULL,
	late_days INTEGER NOT NULL,
	paid_leave_days INTEGER NOT NULL,
	unpaid_leave_days INTEGER NOT NULL,
	late_deductions TEXT NOT NULL,
	bonuses TEXT NOT NULL,
	overtime_hours TEXT NOT NULL,
	overtime_pay TEXT NOT NULL,
	deductions TEXT NOT NULL,
	gross_salary TEXT NOT NULL,
	total_deductions TEXT NOT NULL,
	net_salary TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	approved_by TEXT,
	approval_date TEXT,
	payment_date TEXT,
	notes TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CONSTRAINT uk_employee_period UNIQUE (employee_id, period_month, period_year)
);

CREATE INDEX IF NOT EXISTS idx_payrolls_period ON payrolls (period_year, period_month);
`
