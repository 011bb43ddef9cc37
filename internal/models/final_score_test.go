package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func TestFinalScoreComputeTotal(t *testing.T) {
	s, err := NewFinalScore(1, 1, "1316202082", 9.5, 850, 100, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 730.0, s.Total)

	b := s.Breakdown()
	assert.Equal(t, 285.0, b.PriorComponent)
	assert.Equal(t, 425.0, b.ExamComponent)
	assert.Equal(t, 20.0, b.MeritComponent)
	assert.False(t, b.Capped)
}

func TestFinalScoreBounds(t *testing.T) {
	priors := []float64{0, 3.33, 7.77, 10}
	exams := []float64{0, 333.3, 999.99, 1000}
	merits := []float64{0, 1, 500, 1000}
	for _, p := range priors {
		for _, e := range exams {
			for _, m := range merits {
				s, err := NewFinalScore(1, 1, "x", p, e, m, fixedNow)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, s.Total, 0.0)
				assert.LessOrEqual(t, s.Total, MaxFinalScore)
			}
		}
	}
}

func TestFinalScoreRoundsToCents(t *testing.T) {
	s, err := NewFinalScore(1, 1, "x", 7.777, 333.333, 0, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 399.98, s.Total)
}

func TestFinalScoreValidation(t *testing.T) {
	_, err := NewFinalScore(1, 1, "x", 10.5, 100, 0, fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = NewFinalScore(1, 1, "x", 5, -1, 0, fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = NewFinalScore(1, 1, "x", 5, 100, 1001, fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestFinalScoreSetMeritBonus(t *testing.T) {
	s, err := NewFinalScore(1, 1, "x", 10, 1000, 0, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 800.0, s.Total)

	require.NoError(t, s.SetMeritBonus(1000))
	assert.Equal(t, 1000.0, s.Total)
	assert.Equal(t, 1000.0, s.MeritBonus)

	assert.Error(t, s.SetMeritBonus(-5))
	assert.Equal(t, 1000.0, s.MeritBonus)
}
