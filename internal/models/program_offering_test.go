package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func newTestOffering(t *testing.T, total int) *ProgramOffering {
	t.Helper()
	o, err := NewProgramOffering(OfferingInfo{ProgramID: 101, SiteID: 1, ProgramName: "Software"}, total, 1)
	require.NoError(t, err)
	return o
}

func TestSplitSeats(t *testing.T) {
	tests := []struct {
		total, quota                    int
		wantQuota, wantVuln, wantMerit int
		wantGeneral                     int
	}{
		{100, 0, 5, 19, 28, 48},
		{10, 0, 1, 1, 2, 6},
		{1, 0, 1, 0, 0, 0},
		{50, 7, 7, 8, 12, 23},
	}
	for _, tc := range tests {
		p := SplitSeats(tc.total, tc.quota)
		assert.Equal(t, tc.wantQuota, p.Quota)
		assert.Equal(t, tc.wantVuln, p.Vulnerability)
		assert.Equal(t, tc.wantMerit, p.Merit)
		assert.Equal(t, tc.wantGeneral, p.General)
		assert.Equal(t, tc.total, p.Quota+p.Vulnerability+p.Merit+p.General)
	}
}

func TestNewProgramOfferingDefaults(t *testing.T) {
	o := newTestOffering(t, 100)
	info := o.Info()
	assert.Equal(t, "SOFTWARE", info.ProgramName)
	assert.Equal(t, "TERCER NIVEL", info.Level)
	assert.Equal(t, "PRESENCIAL", info.Mode)
	assert.Equal(t, "MATUTINA", info.Shift)
	assert.Equal(t, 244901, info.OfferID)
	assert.Equal(t, 349001, info.QuotaID)
	assert.NotEmpty(t, info.SiteName)
	assert.Equal(t, OfferingKey{ProgramID: 101, SiteID: 1}, o.Key())
	assert.Equal(t, "101:1", o.Key().String())
}

func TestNewProgramOfferingValidation(t *testing.T) {
	_, err := NewProgramOffering(OfferingInfo{ProgramID: 101, SiteID: 1}, 0, 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = NewProgramOffering(OfferingInfo{ProgramID: 101, SiteID: 1, Mode: "ONLINE"}, 10, 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = NewProgramOffering(OfferingInfo{SiteID: 1}, 10, 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestReserveUntilExhausted(t *testing.T) {
	o := newTestOffering(t, 10)

	require.True(t, o.Reserve(SegmentQuota))
	assert.False(t, o.Reserve(SegmentQuota))
	assert.Equal(t, 0, o.Available(SegmentQuota))

	for i := 0; i < 6; i++ {
		require.True(t, o.Reserve(SegmentGeneral))
	}
	assert.False(t, o.Reserve(SegmentGeneral))
	assert.False(t, o.Reserve(SegmentLastCohort))
	assert.Equal(t, 3, o.AvailableTotal())
}

func TestSharedGeneralPool(t *testing.T) {
	o := newTestOffering(t, 10)
	require.True(t, o.Reserve(SegmentRecognition))
	require.True(t, o.Reserve(SegmentEthnicLastCohort))
	assert.Equal(t, 4, o.Available(SegmentGeneral))
	assert.Equal(t, 4, o.Available(SegmentLastCohort))
}

func TestReleaseRestoresSeat(t *testing.T) {
	o := newTestOffering(t, 10)
	assert.False(t, o.Release(SegmentMerit))

	require.True(t, o.Reserve(SegmentMerit))
	assert.Equal(t, 1, o.Available(SegmentMerit))
	require.True(t, o.Release(SegmentMerit))
	assert.Equal(t, 2, o.Available(SegmentMerit))
	assert.Equal(t, 10, o.AvailableTotal())
}

func TestUnknownSegment(t *testing.T) {
	o := newTestOffering(t, 10)
	assert.False(t, o.Reserve(Segment("VIP")))
	assert.False(t, o.Release(Segment("VIP")))
	assert.Equal(t, 0, o.Available(Segment("VIP")))
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	o := newTestOffering(t, 100)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o.Reserve(SegmentGeneral) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 48, granted)
	stats := o.Stats()
	assert.Equal(t, 48, stats.Assigned)
	assert.Equal(t, 0, stats.FreeBySegment[SegmentGeneral])
	assert.LessOrEqual(t, stats.Assigned, stats.Pools.Total)
}

func TestConfigureFromExternal(t *testing.T) {
	o := newTestOffering(t, 10)
	require.NoError(t, o.ConfigureFromExternal(ExternalSeatConfig{Leveling: 40, FirstSemester: 50, Quota: 10, QuotaType: "cupos_pueblos", Focalized: true}))

	pools := o.Pools()
	assert.Equal(t, 100, pools.Total)
	assert.Equal(t, 10, pools.Quota)
	assert.Equal(t, 40, pools.Leveling)
	assert.Equal(t, 50, pools.FirstSemester)
	assert.Equal(t, "CUPOS_PUEBLOS", pools.QuotaType)
	assert.True(t, pools.Focalized)

	err := o.ConfigureFromExternal(ExternalSeatConfig{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestConfigureFromExternalAfterReservation(t *testing.T) {
	o := newTestOffering(t, 10)
	require.True(t, o.Reserve(SegmentGeneral))

	err := o.ConfigureFromExternal(ExternalSeatConfig{Leveling: 2})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	assert.Equal(t, 10, o.Pools().Total)
}

func TestStatsOccupancy(t *testing.T) {
	o := newTestOffering(t, 10)
	require.True(t, o.Reserve(SegmentQuota))
	require.True(t, o.Reserve(SegmentMerit))
	require.True(t, o.Reserve(SegmentGeneral))

	stats := o.Stats()
	assert.Equal(t, 3, stats.Assigned)
	assert.Equal(t, 7, stats.Available)
	assert.Equal(t, 30.0, stats.OccupancyPct)
	assert.Equal(t, 1, stats.BySegment[SegmentMerit])
	assert.Equal(t, 1, stats.FreeBySegment[SegmentMerit])
}
