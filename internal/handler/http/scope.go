package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
)

// callerScope decides which employees a caller may act on. Managers and
// admins reach every employee; anyone else only the employee in their token.
type callerScope struct {
	claims jwt.Claims
}

func scopeFromRequest(r *http.Request) (callerScope, error) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		return callerScope{}, err
	}
	return callerScope{claims: claims}, nil
}

func (c callerScope) isManager() bool {
	return c.claims.Role.CanApprove()
}

func (c callerScope) ownEmployeeID() string {
	if c.claims.EmployeeID == nil {
		return ""
	}
	return *c.claims.EmployeeID
}

// resolve returns the employee to act on when requested was asked for. An
// empty request means the caller's own employee.
func (c callerScope) resolve(requested string) (string, bool) {
	own := c.ownEmployeeID()
	if requested == "" {
		requested = own
	}
	if c.isManager() {
		return requested, true
	}
	if own == "" || requested != own {
		return "", false
	}
	return own, true
}

func (c callerScope) canAccess(employeeID string) bool {
	return c.isManager() || (employeeID != "" && employeeID == c.ownEmployeeID())
}
