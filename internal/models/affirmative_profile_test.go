package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAffirmativeProfileDefaultsToGeneral(t *testing.T) {
	p := NewAffirmativeProfile(1, "1316202082", fixedNow)
	assert.Equal(t, SegmentGeneral, p.Segment)
	assert.Equal(t, 7, p.Priority)
}

func TestSegmentLadderPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		apply    func(p *AffirmativeProfile)
		segment  Segment
		priority int
	}{
		{"poverty quintile", func(p *AffirmativeProfile) {
			require.NoError(t, p.ApplySocioeconomicCondition(2, fixedNow))
		}, SegmentQuota, 1},
		{"extreme poverty with historical seat", func(p *AffirmativeProfile) {
			require.NoError(t, p.ApplySocioeconomicCondition(1, fixedNow))
			p.MarkHistoricalSeat(true, false, "", fixedNow)
		}, SegmentVulnerability, 2},
		{"flag bearer", func(p *AffirmativeProfile) {
			p.ApplyAcademicMerit(true, "Abanderado Pabellon Nacional", fixedNow)
		}, SegmentMerit, 3},
		{"other distinction", func(p *AffirmativeProfile) {
			p.ApplyAcademicMerit(true, "MEJOR EGRESADO", fixedNow)
		}, SegmentRecognition, 4},
		{"ethnic last cohort", func(p *AffirmativeProfile) {
			p.ApplyLastCohort(true, true, fixedNow)
		}, SegmentEthnicLastCohort, 5},
		{"last cohort", func(p *AffirmativeProfile) {
			p.ApplyLastCohort(true, false, fixedNow)
		}, SegmentLastCohort, 6},
		{"rural public school", func(p *AffirmativeProfile) {
			p.ApplyRurality("fiscal", "rural", fixedNow)
		}, SegmentQuota, 1},
		{"private rural school", func(p *AffirmativeProfile) {
			p.ApplyRurality("PARTICULAR", "RURAL", fixedNow)
		}, SegmentGeneral, 7},
		{"disability below threshold", func(p *AffirmativeProfile) {
			require.NoError(t, p.ApplyDisability(29, true, fixedNow))
		}, SegmentGeneral, 7},
		{"disability with card", func(p *AffirmativeProfile) {
			require.NoError(t, p.ApplyDisability(30, true, fixedNow))
		}, SegmentQuota, 1},
		{"quota beats merit", func(p *AffirmativeProfile) {
			p.ApplyAcademicMerit(true, "PORTA ESTANDARTE PLANTEL", fixedNow)
			p.ApplyEthnicSelfIdentification("montubio", fixedNow)
		}, SegmentQuota, 1},
		{"historical seat blocks quota", func(p *AffirmativeProfile) {
			p.ApplyMigrant(true, fixedNow)
			p.ApplyViolenceVictim(true, fixedNow)
			p.MarkHistoricalSeat(true, true, "2024-2S", fixedNow)
		}, SegmentGeneral, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewAffirmativeProfile(1, "1316202082", fixedNow)
			tc.apply(p)
			assert.Equal(t, tc.segment, p.Segment)
			assert.Equal(t, tc.priority, p.Priority)
		})
	}
}

func TestCalculateSegmentIsIdempotent(t *testing.T) {
	p := NewAffirmativeProfile(1, "1316202082", fixedNow)
	require.NoError(t, p.ApplySocioeconomicCondition(1, fixedNow))
	first := p.CalculateSegment()
	second := p.CalculateSegment()
	assert.Equal(t, first, second)
	assert.Equal(t, SegmentQuota, second)
}

func TestFlagsCanBeCleared(t *testing.T) {
	p := NewAffirmativeProfile(1, "1316202082", fixedNow)
	p.ApplyEthnicSelfIdentification("INDIGENA", fixedNow)
	assert.Equal(t, SegmentQuota, p.Segment)

	p.ApplyEthnicSelfIdentification("MESTIZO", fixedNow)
	assert.False(t, p.Flags.Ethnic)
	assert.Equal(t, SegmentGeneral, p.Segment)
}

func TestApplySocioeconomicConditionValidation(t *testing.T) {
	p := NewAffirmativeProfile(1, "1316202082", fixedNow)
	assert.Error(t, p.ApplySocioeconomicCondition(0, fixedNow))
	assert.Error(t, p.ApplySocioeconomicCondition(6, fixedNow))
	assert.Equal(t, 0, p.Flags.Quintile)
}

func TestSegmentPriorityAndParse(t *testing.T) {
	for i, seg := range AllSegments {
		assert.Equal(t, i+1, SegmentPriority(seg))
	}
	seg, err := ParseSegment(" merit ")
	require.NoError(t, err)
	assert.Equal(t, SegmentMerit, seg)

	_, err = ParseSegment("VIP")
	assert.Error(t, err)
}

func TestMarkHistoricalSeatCountsEachPeriodOnce(t *testing.T) {
	p := NewAffirmativeProfile(1, "1316202082", fixedNow)

	p.MarkHistoricalSeat(true, true, "2024-2S", fixedNow)
	p.MarkHistoricalSeat(true, true, " 2024-2s ", fixedNow)
	assert.Equal(t, 1, p.Flags.ActiveSeats)

	p.MarkHistoricalSeat(true, true, "2025-1S", fixedNow)
	assert.Equal(t, 2, p.Flags.ActiveSeats)
	assert.Equal(t, []string{"2024-2S", "2025-1S"}, p.SeatPeriods)

	p.MarkHistoricalSeat(true, false, "2025-1S", fixedNow)
	assert.Equal(t, 2, p.Flags.ActiveSeats)
	assert.False(t, p.Flags.HistoricalSeatActive)

	c := p.Clone()
	c.MarkHistoricalSeat(true, true, "2025-2S", fixedNow)
	assert.Len(t, p.SeatPeriods, 2)
}
