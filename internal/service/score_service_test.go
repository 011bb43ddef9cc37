package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func TestScoreServiceCompute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)
	h.registerApplicant(t, "1316202082", 9.5)
	e := h.enrollGraded(t, "1316202082", softwareAtManta, 1, 850)

	score, err := h.score.Compute(ctx, ComputeScoreRequest{Identification: "1316202082", EnrollmentID: e.ID, MeritBonus: 100})
	require.NoError(t, err)
	assert.Equal(t, 730.0, score.Total)
	assert.Equal(t, e.ID, score.EnrollmentID)
	assert.Equal(t, 285.0, score.Breakdown.PriorComponent)
	assert.Equal(t, 425.0, score.Breakdown.ExamComponent)
	assert.Equal(t, 20.0, score.Breakdown.MeritComponent)

	_, err = h.score.Compute(ctx, ComputeScoreRequest{Identification: "1316202082", EnrollmentID: e.ID})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	found, ok := h.score.Find(ctx, "1316202082")
	require.True(t, ok)
	assert.Equal(t, 730.0, found.Total)

	_, ok = h.score.Find(ctx, "0912345678")
	assert.False(t, ok)
}

func TestScoreServiceComputeRequiresGradedOwnEnrollment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)
	h.registerApplicant(t, "1316202082", 9.5)
	h.registerApplicant(t, "0912345678", 8)

	own, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 101, SiteID: 1, Shift: "matutina", Rank: 1})
	require.NoError(t, err)
	other := h.enrollGraded(t, "0912345678", softwareAtManta, 1, 900)

	_, err = h.score.Compute(ctx, ComputeScoreRequest{Identification: "1316202082", EnrollmentID: own.ID})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	_, err = h.score.Compute(ctx, ComputeScoreRequest{Identification: "1316202082", EnrollmentID: other.ID})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = h.score.Compute(ctx, ComputeScoreRequest{Identification: "1712345678", EnrollmentID: own.ID})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = h.score.Compute(ctx, ComputeScoreRequest{Identification: "1316202082", EnrollmentID: own.ID, MeritBonus: 1200})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestScoreServiceSetMeritBonus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)
	h.scoredApplicant(t, "1316202082", softwareAtManta, 10, 1000)

	score, err := h.score.SetMeritBonus(ctx, "1316202082", MeritBonusRequest{MeritBonus: floatPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, score.Total)
	assert.False(t, score.Breakdown.Capped)

	_, err = h.score.SetMeritBonus(ctx, "1316202082", MeritBonusRequest{MeritBonus: floatPtr(-1)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	found, _ := h.score.Find(ctx, "1316202082")
	assert.Equal(t, 1000.0, found.MeritBonus)

	h.registerApplicant(t, "0912345678", 8)
	_, err = h.score.SetMeritBonus(ctx, "0912345678", MeritBonusRequest{MeritBonus: floatPtr(10)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}
