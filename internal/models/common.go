package models

import (
	"regexp"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

const (
	minProvinceCode = 1
	maxProvinceCode = 24
)

var (
	cedulaPattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateIdentification checks the national id format: ten ASCII digits whose
// first two form a province code between 01 and 24.
func ValidateIdentification(id string) error {
	if !cedulaPattern.MatchString(id) {
		return validationError("identification must be exactly 10 digits")
	}
	province, _ := strconv.Atoi(id[:2])
	if province < minProvinceCode || province > maxProvinceCode {
		return validationError("identification has an invalid province code")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email, rejecting malformed addresses.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return "", validationError("email address is not valid")
	}
	return normalized, nil
}

func validationError(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func stateConflict(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrStateConflict, message)
}
