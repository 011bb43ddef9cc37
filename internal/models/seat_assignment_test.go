package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func newTestAssignment(t *testing.T) *SeatAssignment {
	t.Helper()
	score, err := NewFinalScore(1, 10, "1316202082", 9.5, 850, 100, fixedNow)
	require.NoError(t, err)
	profile := NewAffirmativeProfile(10, "1316202082", fixedNow)
	a, err := NewSeatAssignment(5, score, profile, OfferingKey{ProgramID: 101, SiteID: 1}, SegmentGeneral, fixedNow)
	require.NoError(t, err)
	return a
}

func TestNewSeatAssignment(t *testing.T) {
	a := newTestAssignment(t)
	assert.Equal(t, AssignmentPending, a.State)
	assert.Equal(t, int64(10), a.ApplicantID)
	assert.Equal(t, 730.0, a.FinalScore)
	assert.Equal(t, 7, a.Priority)
	assert.True(t, a.IsOpen())

	_, err := NewSeatAssignment(1, nil, nil, OfferingKey{}, SegmentGeneral, fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
}

func TestSeatAssignmentConfirm(t *testing.T) {
	a := newTestAssignment(t)

	changed, err := a.Confirm(fixedNow)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, a.ConfirmedAt)

	changed, err = a.Confirm(fixedNow)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, a.IsOpen())
}

func TestSeatAssignmentReject(t *testing.T) {
	a := newTestAssignment(t)
	_, err := a.Confirm(fixedNow)
	require.NoError(t, err)

	require.NoError(t, a.Reject("moved abroad"))
	assert.Equal(t, AssignmentRejected, a.State)
	assert.Equal(t, "rejected: moved abroad", a.Observations)
	assert.False(t, a.IsOpen())

	assert.True(t, appErrors.HasCode(a.Reject("again"), appErrors.ErrStateConflict.Code))
	_, err = a.Confirm(fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
}

func TestSeatAssignmentExpire(t *testing.T) {
	a := newTestAssignment(t)
	require.NoError(t, a.Expire())
	assert.Equal(t, AssignmentExpired, a.State)
	assert.True(t, appErrors.HasCode(a.Expire(), appErrors.ErrStateConflict.Code))

	b := newTestAssignment(t)
	_, err := b.Confirm(fixedNow)
	require.NoError(t, err)
	assert.True(t, appErrors.HasCode(b.Expire(), appErrors.ErrStateConflict.Code))
}
