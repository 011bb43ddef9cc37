package models

import (
	"strings"
	"time"
)

// Segment is the priority tier an applicant draws a seat from.
type Segment string

const (
	SegmentQuota            Segment = "QUOTA"
	SegmentVulnerability    Segment = "VULNERABILITY"
	SegmentMerit            Segment = "MERIT"
	SegmentRecognition      Segment = "RECOGNITION"
	SegmentEthnicLastCohort Segment = "ETHNIC_LAST_COHORT"
	SegmentLastCohort       Segment = "LAST_COHORT"
	SegmentGeneral          Segment = "GENERAL"
)

// AllSegments lists every segment in priority order.
var AllSegments = []Segment{
	SegmentQuota,
	SegmentVulnerability,
	SegmentMerit,
	SegmentRecognition,
	SegmentEthnicLastCohort,
	SegmentLastCohort,
	SegmentGeneral,
}

// ParseSegment accepts any casing.
func ParseSegment(raw string) (Segment, error) {
	seg := Segment(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range AllSegments {
		if s == seg {
			return seg, nil
		}
	}
	return "", validationError("unknown segment " + raw)
}

const (
	minQuintile             = 1
	maxQuintile             = 5
	povertyQuintile         = 2
	extremePovertyQuintile  = 1
	disabilityMinPercentage = 30
)

var ethnicGroups = map[string]struct{}{
	"INDIGENA":         {},
	"AFROECUATORIANO":  {},
	"MONTUBIO":         {},
	"AFRODESCENDIENTE": {},
}

var meritDistinctions = map[string]struct{}{
	"ABANDERADO PABELLON NACIONAL":   {},
	"PORTA ESTANDARTE CIUDAD":        {},
	"PORTA ESTANDARTE PLANTEL":       {},
	"1ER. ESCOLTA PABELLON NACIONAL": {},
	"2DO. ESCOLTA PABELLON NACIONAL": {},
}

// AffirmativeFlags are the eligibility markers of an applicant.
type AffirmativeFlags struct {
	Quintile             int  `json:"quintile,omitempty"`
	Poverty              bool `json:"poverty"`
	ExtremePoverty       bool `json:"extreme_poverty"`
	Rural                bool `json:"rural"`
	Disability           bool `json:"disability"`
	Ethnic               bool `json:"ethnic"`
	ViolenceVictim       bool `json:"violence_victim"`
	Migrant              bool `json:"migrant"`
	AcademicMerit        bool `json:"academic_merit"`
	Recognition          bool `json:"recognition"`
	LastCohort           bool `json:"last_cohort"`
	LastCohortEthnic     bool `json:"last_cohort_ethnic"`
	HistoricalSeat       bool `json:"historical_seat"`
	HistoricalSeatActive bool `json:"historical_seat_active"`
	ActiveSeats          int  `json:"active_seats"`
}

// AffirmativeProfile derives the applicant's segment from their flags.
type AffirmativeProfile struct {
	ApplicantID    int64            `json:"applicant_id"`
	Identification string           `json:"identification"`
	Flags          AffirmativeFlags `json:"flags"`
	Segment        Segment          `json:"segment"`
	Priority       int              `json:"priority"`
	SeatPeriods    []string         `json:"seat_periods,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type segmentRule struct {
	segment Segment
	matches func(AffirmativeFlags) bool
}

// segmentLadder is evaluated top to bottom; the first match wins and its
// position is the priority.
var segmentLadder = []segmentRule{
	{SegmentQuota, func(f AffirmativeFlags) bool {
		return !f.HistoricalSeat && (f.Poverty || f.Rural || f.Disability || f.Ethnic || f.ViolenceVictim || f.Migrant)
	}},
	{SegmentVulnerability, func(f AffirmativeFlags) bool { return f.ExtremePoverty }},
	{SegmentMerit, func(f AffirmativeFlags) bool { return f.AcademicMerit }},
	{SegmentRecognition, func(f AffirmativeFlags) bool { return f.Recognition }},
	{SegmentEthnicLastCohort, func(f AffirmativeFlags) bool { return f.LastCohortEthnic }},
	{SegmentLastCohort, func(f AffirmativeFlags) bool { return f.LastCohort }},
	{SegmentGeneral, func(AffirmativeFlags) bool { return true }},
}

// SegmentPriority returns the ladder position of a segment, 1 being highest.
func SegmentPriority(seg Segment) int {
	for i, rule := range segmentLadder {
		if rule.segment == seg {
			return i + 1
		}
	}
	return len(segmentLadder)
}

// NewAffirmativeProfile starts every applicant in the GENERAL segment.
func NewAffirmativeProfile(applicantID int64, identification string, now time.Time) *AffirmativeProfile {
	p := &AffirmativeProfile{ApplicantID: applicantID, Identification: identification}
	p.touch(now)
	return p
}

// CalculateSegment resolves the segment and priority from the current flags.
func (p *AffirmativeProfile) CalculateSegment() Segment {
	for i, rule := range segmentLadder {
		if rule.matches(p.Flags) {
			p.Segment = rule.segment
			p.Priority = i + 1
			return p.Segment
		}
	}
	return p.Segment
}

// ApplySocioeconomicCondition records the social registry quintile (1-5).
func (p *AffirmativeProfile) ApplySocioeconomicCondition(quintile int, now time.Time) error {
	if quintile < minQuintile || quintile > maxQuintile {
		return validationError("quintile must be between 1 and 5")
	}
	p.Flags.Quintile = quintile
	p.Flags.Poverty = quintile <= povertyQuintile
	p.Flags.ExtremePoverty = quintile == extremePovertyQuintile
	p.touch(now)
	return nil
}

// ApplyRurality marks applicants from public rural schools.
func (p *AffirmativeProfile) ApplyRurality(institutionType, zone string, now time.Time) {
	p.Flags.Rural = strings.EqualFold(strings.TrimSpace(institutionType), "FISCAL") &&
		strings.EqualFold(strings.TrimSpace(zone), "RURAL")
	p.touch(now)
}

// ApplyDisability requires a card and at least 30%.
func (p *AffirmativeProfile) ApplyDisability(percentage int, hasCard bool, now time.Time) error {
	if percentage < 0 || percentage > 100 {
		return validationError("disability percentage must be between 0 and 100")
	}
	p.Flags.Disability = hasCard && percentage >= disabilityMinPercentage
	p.touch(now)
	return nil
}

// ApplyEthnicSelfIdentification checks the category against the recognised peoples.
func (p *AffirmativeProfile) ApplyEthnicSelfIdentification(category string, now time.Time) {
	_, ok := ethnicGroups[strings.ToUpper(strings.TrimSpace(category))]
	p.Flags.Ethnic = ok
	p.touch(now)
}

// ApplyAcademicMerit distinguishes flag-bearers and escorts (merit) from other
// honor-roll distinctions (recognition).
func (p *AffirmativeProfile) ApplyAcademicMerit(honorRoll bool, distinction string, now time.Time) {
	distinction = strings.ToUpper(strings.TrimSpace(distinction))
	_, merit := meritDistinctions[distinction]
	p.Flags.AcademicMerit = honorRoll && merit
	p.Flags.Recognition = honorRoll && !merit && distinction != ""
	p.touch(now)
}

// ApplyLastCohort marks graduates of the current school year.
func (p *AffirmativeProfile) ApplyLastCohort(isLastCohort, ethnic bool, now time.Time) {
	p.Flags.LastCohort = isLastCohort
	p.Flags.LastCohortEthnic = isLastCohort && ethnic
	p.touch(now)
}

// ApplyViolenceVictim sets the violence victim flag.
func (p *AffirmativeProfile) ApplyViolenceVictim(victim bool, now time.Time) {
	p.Flags.ViolenceVictim = victim
	p.touch(now)
}

// ApplyMigrant sets the migrant or returnee flag.
func (p *AffirmativeProfile) ApplyMigrant(migrant bool, now time.Time) {
	p.Flags.Migrant = migrant
	p.touch(now)
}

// MarkHistoricalSeat records a previously accepted seat, which rules out QUOTA.
// An active seat counts once per period.
func (p *AffirmativeProfile) MarkHistoricalSeat(hasSeat, active bool, period string, now time.Time) {
	p.Flags.HistoricalSeat = hasSeat
	p.Flags.HistoricalSeatActive = active
	period = strings.ToUpper(strings.TrimSpace(period))
	if active && !containsPeriod(p.SeatPeriods, period) {
		p.SeatPeriods = append(p.SeatPeriods, period)
		p.Flags.ActiveSeats = len(p.SeatPeriods)
	}
	p.touch(now)
}

// Clone returns a deep copy of the profile.
func (p *AffirmativeProfile) Clone() *AffirmativeProfile {
	c := *p
	c.SeatPeriods = append([]string(nil), p.SeatPeriods...)
	return &c
}

func containsPeriod(periods []string, period string) bool {
	for _, p := range periods {
		if p == period {
			return true
		}
	}
	return false
}

func (p *AffirmativeProfile) touch(now time.Time) {
	p.UpdatedAt = now.UTC()
	p.CalculateSegment()
}
