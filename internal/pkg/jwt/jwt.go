package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role is the caller's role as carried in the access token.
type Role string

const (
	RoleAdmin    Role = "admin"    // full access
	RoleManager  Role = "manager"  // approves leave and payroll
	RoleEmployee Role = "employee" // own attendance and leave
)

// CanApprove reports whether the role may run lifecycle operations.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleManager
}

var ErrInvalidClaims = errors.New("token claims are missing or invalid")

// Claims is the identity extracted from a verified access token.
type Claims struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

type Service interface {
	GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": returnValueOrNil(employeeID),
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the claims jwtauth.Verifier stored in ctx.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	if tokenType, _ := raw["type"].(string); tokenType != "access" {
		return Claims{}, ErrInvalidClaims
	}
	userID, ok := raw["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrInvalidClaims
	}
	role, _ := raw["role"].(string)

	claims := Claims{UserID: userID, Role: Role(role)}
	if employeeID, ok := raw["employee_id"].(string); ok && employeeID != "" {
		claims.EmployeeID = &employeeID
	}
	return claims, nil
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
