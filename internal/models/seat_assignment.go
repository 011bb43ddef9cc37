package models

import (
	"strings"
	"time"
)

// AssignmentState tracks a seat offer through confirmation.
type AssignmentState string

const (
	AssignmentPending   AssignmentState = "PENDING"
	AssignmentConfirmed AssignmentState = "CONFIRMED"
	AssignmentRejected  AssignmentState = "REJECTED"
	AssignmentExpired   AssignmentState = "EXPIRED"
)

// SeatAssignment is a seat in a program held for an applicant.
type SeatAssignment struct {
	ID             int64           `json:"id"`
	ApplicantID    int64           `json:"applicant_id"`
	Identification string          `json:"identification"`
	ProgramID      int             `json:"program_id"`
	SiteID         int             `json:"site_id"`
	FinalScore     float64         `json:"final_score"`
	Segment        Segment         `json:"segment"`
	Priority       int             `json:"priority"`
	State          AssignmentState `json:"state"`
	AssignedAt     time.Time       `json:"assigned_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	Observations   string          `json:"observations,omitempty"`
}

// NewSeatAssignment creates a PENDING assignment.
func NewSeatAssignment(id int64, score *FinalScore, profile *AffirmativeProfile, key OfferingKey, seg Segment, now time.Time) (*SeatAssignment, error) {
	if score == nil || profile == nil {
		return nil, stateConflict("final score and affirmative profile are required")
	}
	return &SeatAssignment{
		ID:             id,
		ApplicantID:    score.ApplicantID,
		Identification: score.Identification,
		ProgramID:      key.ProgramID,
		SiteID:         key.SiteID,
		FinalScore:     score.Total,
		Segment:        seg,
		Priority:       SegmentPriority(seg),
		State:          AssignmentPending,
		AssignedAt:     now.UTC(),
	}, nil
}

// OfferingKey returns the offering the seat belongs to.
func (a *SeatAssignment) OfferingKey() OfferingKey {
	return OfferingKey{ProgramID: a.ProgramID, SiteID: a.SiteID}
}

// IsOpen reports whether the assignment still holds a seat.
func (a *SeatAssignment) IsOpen() bool {
	return a.State == AssignmentPending || a.State == AssignmentConfirmed
}

// Confirm accepts a pending seat. Confirming twice is a no-op and reports false.
func (a *SeatAssignment) Confirm(now time.Time) (bool, error) {
	switch a.State {
	case AssignmentConfirmed:
		return false, nil
	case AssignmentPending:
		ts := now.UTC()
		a.State = AssignmentConfirmed
		a.ConfirmedAt = &ts
		return true, nil
	}
	return false, stateConflict("assignment is " + strings.ToLower(string(a.State)))
}

// Reject gives up a pending or confirmed seat.
func (a *SeatAssignment) Reject(reason string) error {
	if !a.IsOpen() {
		return stateConflict("assignment is " + strings.ToLower(string(a.State)))
	}
	a.State = AssignmentRejected
	if reason = strings.TrimSpace(reason); reason != "" {
		a.Observations = "rejected: " + reason
	}
	return nil
}

// Expire lapses a seat that was never confirmed.
func (a *SeatAssignment) Expire() error {
	if a.State != AssignmentPending {
		return stateConflict("only pending assignments can expire")
	}
	a.State = AssignmentExpired
	return nil
}
