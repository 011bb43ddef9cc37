package models

import (
	"fmt"
	"strings"
	"sync"
)

const (
	quotaShare         = 0.05
	vulnerabilityShare = 0.20
	meritShare         = 0.30
	minQuotaSeats      = 1

	offerIDBase = 244900
	quotaIDBase = 349000
)

var (
	offeringLevels = []string{"TERCER NIVEL", "TERCER NIVEL TECNOLÓGICO SUPERIOR"}
	offeringModes  = []string{"PRESENCIAL", "HIBRIDA", "SEMI-PRESENCIAL", "DISTANCIA"}
	offeringShifts = []string{"MATUTINA", "VESPERTINA", "NOCTURNA", "NO APLICA JORNADA"}
)

// OfferingKey identifies an offering by program and site.
type OfferingKey struct {
	ProgramID int
	SiteID    int
}

func (k OfferingKey) String() string {
	return fmt.Sprintf("%d:%d", k.ProgramID, k.SiteID)
}

// OfferingInfo is the descriptive part of an offering.
type OfferingInfo struct {
	ProgramID   int    `json:"program_id" db:"program_id"`
	ProgramName string `json:"program_name" db:"program_name"`
	SiteID      int    `json:"site_id" db:"site_id"`
	SiteName    string `json:"site_name" db:"site_name"`
	Level       string `json:"level" db:"level"`
	Mode        string `json:"mode" db:"mode"`
	Shift       string `json:"shift" db:"shift"`
	OfferID     int    `json:"offer_id" db:"offer_id"`
	QuotaID     int    `json:"quota_id" db:"quota_id"`
}

// SeatPools is the segment split of an offering's seats.
type SeatPools struct {
	Total         int    `json:"total"`
	Quota         int    `json:"quota"`
	Vulnerability int    `json:"vulnerability"`
	Merit         int    `json:"merit"`
	General       int    `json:"general"`
	Leveling      int    `json:"leveling"`
	FirstSemester int    `json:"first_semester"`
	QuotaType     string `json:"quota_type"`
	Focalized     bool   `json:"focalized"`
}

// ExternalSeatConfig is the seat breakdown published by the national offer.
type ExternalSeatConfig struct {
	Leveling      int
	FirstSemester int
	Quota         int
	QuotaType     string
	Focalized     bool
}

// SplitSeats derives the pools from a total: quota is 5% with a floor of one
// seat, the rest splits 20% vulnerability, 30% merit and the remainder general.
func SplitSeats(total, quota int) SeatPools {
	if quota <= 0 {
		quota = int(float64(total) * quotaShare)
		if quota < minQuotaSeats {
			quota = minQuotaSeats
		}
	}
	remaining := total - quota
	vulnerability := int(float64(remaining) * vulnerabilityShare)
	merit := int(float64(remaining) * meritShare)
	return SeatPools{
		Total:         total,
		Quota:         quota,
		Vulnerability: vulnerability,
		Merit:         merit,
		General:       remaining - vulnerability - merit,
		Leveling:      remaining,
		QuotaType:     "CUPOS_NIVELACION",
	}
}

// ProgramOffering is the seat ledger of a (program, site) pair. All methods
// are safe for concurrent use.
type ProgramOffering struct {
	mu       sync.Mutex
	info     OfferingInfo
	pools    SeatPools
	assigned map[Segment]int
}

// NewProgramOffering validates the descriptive fields and splits the seats.
// seq numbers the offer and quota ids when they are not provided.
func NewProgramOffering(info OfferingInfo, totalSeats int, seq int64) (*ProgramOffering, error) {
	if info.ProgramID <= 0 || info.SiteID <= 0 {
		return nil, validationError("program and site ids must be positive")
	}
	if totalSeats < 1 {
		return nil, validationError("total seats must be at least 1")
	}
	var err error
	if info.Level, err = oneOf("level", info.Level, offeringLevels, offeringLevels[0]); err != nil {
		return nil, err
	}
	if info.Mode, err = oneOf("mode", info.Mode, offeringModes, offeringModes[0]); err != nil {
		return nil, err
	}
	if info.Shift, err = oneOf("shift", info.Shift, offeringShifts, offeringShifts[0]); err != nil {
		return nil, err
	}
	info.ProgramName = strings.ToUpper(strings.TrimSpace(info.ProgramName))
	if info.SiteName == "" {
		if site, ok := FindSite(info.SiteID); ok {
			info.SiteName = site.Name
		}
	}
	if info.OfferID == 0 {
		info.OfferID = offerIDBase + int(seq)
	}
	if info.QuotaID == 0 {
		info.QuotaID = quotaIDBase + int(seq)
	}
	return &ProgramOffering{
		info:     info,
		pools:    SplitSeats(totalSeats, 0),
		assigned: make(map[Segment]int, len(AllSegments)),
	}, nil
}

// Key returns the (program, site) identity.
func (o *ProgramOffering) Key() OfferingKey {
	return OfferingKey{ProgramID: o.info.ProgramID, SiteID: o.info.SiteID}
}

// Info returns the descriptive fields.
func (o *ProgramOffering) Info() OfferingInfo {
	return o.info
}

// Pools returns a copy of the current pools.
func (o *ProgramOffering) Pools() SeatPools {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pools
}

// ConfigureFromExternal replaces the seat breakdown. It is rejected once any
// seat has been reserved.
func (o *ProgramOffering) ConfigureFromExternal(cfg ExternalSeatConfig) error {
	if cfg.Leveling < 0 || cfg.FirstSemester < 0 || cfg.Quota < 0 {
		return validationError("seat counts cannot be negative")
	}
	total := cfg.Leveling + cfg.FirstSemester + cfg.Quota
	if total < 1 {
		return validationError("total seats must be at least 1")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.totalAssigned() > 0 {
		return stateConflict("offering seats cannot be reconfigured after reservations")
	}
	pools := SplitSeats(total, cfg.Quota)
	pools.Leveling = cfg.Leveling
	pools.FirstSemester = cfg.FirstSemester
	if cfg.QuotaType != "" {
		pools.QuotaType = strings.ToUpper(strings.TrimSpace(cfg.QuotaType))
	}
	pools.Focalized = cfg.Focalized
	o.pools = pools
	return nil
}

// AvailableTotal returns total seats minus every reservation.
func (o *ProgramOffering) AvailableTotal() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pools.Total - o.totalAssigned()
}

// Available returns the free seats of a segment. Segments without their own
// pool share the general pool.
func (o *ProgramOffering) Available(seg Segment) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.available(seg)
}

// Reserve atomically takes one seat of the segment. It returns false for an
// unknown segment or an exhausted pool.
func (o *ProgramOffering) Reserve(seg Segment) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !knownSegment(seg) || o.available(seg) <= 0 {
		return false
	}
	o.assigned[seg]++
	return true
}

// Release gives a seat back. It returns false when nothing was reserved.
func (o *ProgramOffering) Release(seg Segment) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !knownSegment(seg) || o.assigned[seg] == 0 {
		return false
	}
	o.assigned[seg]--
	return true
}

// OfferingStats is a point-in-time view of occupancy.
type OfferingStats struct {
	OfferingInfo
	Pools         SeatPools       `json:"pools"`
	Assigned      int             `json:"assigned"`
	Available     int             `json:"available"`
	OccupancyPct  float64         `json:"occupancy_pct"`
	BySegment     map[Segment]int `json:"by_segment"`
	FreeBySegment map[Segment]int `json:"free_by_segment"`
}

// Stats snapshots occupancy under the offering lock.
func (o *ProgramOffering) Stats() OfferingStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	assigned := o.totalAssigned()
	stats := OfferingStats{
		OfferingInfo:  o.info,
		Pools:         o.pools,
		Assigned:      assigned,
		Available:     o.pools.Total - assigned,
		BySegment:     make(map[Segment]int, len(AllSegments)),
		FreeBySegment: make(map[Segment]int, len(AllSegments)),
	}
	if o.pools.Total > 0 {
		stats.OccupancyPct = round2(float64(assigned) / float64(o.pools.Total) * 100)
	}
	for _, seg := range AllSegments {
		stats.BySegment[seg] = o.assigned[seg]
		stats.FreeBySegment[seg] = o.available(seg)
	}
	return stats
}

func (o *ProgramOffering) available(seg Segment) int {
	switch seg {
	case SegmentQuota:
		return o.pools.Quota - o.assigned[SegmentQuota]
	case SegmentVulnerability:
		return o.pools.Vulnerability - o.assigned[SegmentVulnerability]
	case SegmentMerit:
		return o.pools.Merit - o.assigned[SegmentMerit]
	case SegmentGeneral, SegmentRecognition, SegmentEthnicLastCohort, SegmentLastCohort:
		shared := o.assigned[SegmentGeneral] + o.assigned[SegmentRecognition] +
			o.assigned[SegmentEthnicLastCohort] + o.assigned[SegmentLastCohort]
		return o.pools.General - shared
	}
	return 0
}

func (o *ProgramOffering) totalAssigned() int {
	sum := 0
	for _, n := range o.assigned {
		sum += n
	}
	return sum
}

func knownSegment(seg Segment) bool {
	for _, s := range AllSegments {
		if s == seg {
			return true
		}
	}
	return false
}

func oneOf(field, raw string, allowed []string, fallback string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if a == v {
			return v, nil
		}
	}
	return "", validationError(fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
}

// CatalogOffering is a row of the national offer catalog.
type CatalogOffering struct {
	OfferingInfo
	Period        string `json:"period" db:"period"`
	Leveling      int    `json:"leveling" db:"leveling_seats"`
	FirstSemester int    `json:"first_semester" db:"first_semester_seats"`
	Quota         int    `json:"quota" db:"quota_seats"`
	QuotaType     string `json:"quota_type" db:"quota_type"`
	Focalized     bool   `json:"focalized" db:"focalized"`
}

// SeatConfig returns the external seat breakdown of the row.
func (c CatalogOffering) SeatConfig() ExternalSeatConfig {
	return ExternalSeatConfig{
		Leveling:      c.Leveling,
		FirstSemester: c.FirstSemester,
		Quota:         c.Quota,
		QuotaType:     c.QuotaType,
		Focalized:     c.Focalized,
	}
}
