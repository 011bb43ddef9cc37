package service

import (
	"errors"
	"time"

	"github.com/noah-isme/admission-api/internal/repository"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

// idSource issues sequential ids.
type idSource interface {
	Next() int64
}

type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// storeError translates in-memory store failures into typed errors, passing
// domain errors raised inside update callbacks through unchanged.
func storeError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrRecordNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrStateConflict, entity+" already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist "+entity)
}

func validationFailed(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func notFound(entity string) error {
	return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
}

func stateConflict(message string) error {
	return appErrors.Clone(appErrors.ErrStateConflict, message)
}
