package models

// EventSeatConfirmed is the routing name of SeatConfirmedEvent.
const EventSeatConfirmed = "seat.confirmed"

// SeatConfirmedEvent is published when an applicant accepts a seat. It carries
// enough data for downstream consumers to notify without calling back.
type SeatConfirmedEvent struct {
	EventID        string  `json:"event_id"`
	AssignmentID   int64   `json:"assignment_id"`
	ApplicantID    int64   `json:"applicant_id"`
	Identification string  `json:"identification"`
	ProgramID      int     `json:"program_id"`
	ProgramName    string  `json:"program_name"`
	SiteID         int     `json:"site_id"`
	SiteName       string  `json:"site_name"`
	Segment        Segment `json:"segment"`
	FinalScore     float64 `json:"final_score"`
	ConfirmedAt    string  `json:"confirmed_at"`
}
