package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorRole represents the roles of admission office staff.
type OperatorRole string

const (
	RoleAdmin    OperatorRole = "ADMIN"
	RoleOperator OperatorRole = "OPERATOR"
	RoleViewer   OperatorRole = "VIEWER"
)

// Operator is a staff account allowed to drive the admission workflow.
type Operator struct {
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Role         OperatorRole `json:"role"`
	Active       bool         `json:"active"`
}

// LoginRequest holds operator credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	IssuedAt    time.Time    `json:"issued_at"`
	Operator    OperatorInfo `json:"operator"`
}

// OperatorInfo describes the authenticated operator in responses.
type OperatorInfo struct {
	Username string       `json:"username"`
	Role     OperatorRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Username string       `json:"username"`
	Role     OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
