package models

import (
	"strings"
	"time"
)

// ExamState tracks an exam through scheduling and grading.
type ExamState string

const (
	ExamScheduled   ExamState = "SCHEDULED"
	ExamCompleted   ExamState = "COMPLETED"
	ExamRescheduled ExamState = "RESCHEDULED"
	ExamCancelled   ExamState = "CANCELLED"
)

// ExamType is chosen from the program the applicant enrolls in.
type ExamType string

const (
	ExamPractical ExamType = "practical"
	ExamWritten   ExamType = "written"
)

const (
	MinExamGrade        = 0.0
	MaxExamGrade        = 1000.0
	DefaultExamOffset   = 15
	fallbackRoom        = 101
	timeOfDayLayout     = "15:04"
	examDurationMinutes = 120
)

// TimeWindow is an exam session start and end in HH:MM.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var shiftWindows = map[Shift]TimeWindow{
	ShiftMorning:   {Start: "08:00", End: "10:00"},
	ShiftAfternoon: {Start: "14:00", End: "16:00"},
	ShiftEvening:   {Start: "18:00", End: "20:00"},
}

var siteRooms = map[int][]int{
	1: {101, 102, 103},
	2: {201, 202},
	3: {301},
}

// WindowForShift returns the exam window of a shift, morning when unknown.
func WindowForShift(shift Shift) TimeWindow {
	if w, ok := shiftWindows[shift]; ok {
		return w
	}
	return shiftWindows[ShiftMorning]
}

// RoomForSite returns the first room configured for a site.
func RoomForSite(siteID int) int {
	if rooms, ok := siteRooms[siteID]; ok && len(rooms) > 0 {
		return rooms[0]
	}
	return fallbackRoom
}

// ExamPolicy decides exam type and scheduling offset.
type ExamPolicy struct {
	OffsetDays        int
	PracticalPrograms map[int]struct{}
}

// DefaultExamPolicy schedules exams 15 days out, practical for programs 101 and 102.
func DefaultExamPolicy() ExamPolicy {
	return NewExamPolicy(DefaultExamOffset, []int{101, 102})
}

// NewExamPolicy builds a policy, falling back to defaults for empty input.
func NewExamPolicy(offsetDays int, practical []int) ExamPolicy {
	if offsetDays <= 0 {
		offsetDays = DefaultExamOffset
	}
	set := make(map[int]struct{}, len(practical))
	for _, id := range practical {
		set[id] = struct{}{}
	}
	return ExamPolicy{OffsetDays: offsetDays, PracticalPrograms: set}
}

// TypeFor picks the exam type of a program.
func (p ExamPolicy) TypeFor(programID int) ExamType {
	if _, ok := p.PracticalPrograms[programID]; ok {
		return ExamPractical
	}
	return ExamWritten
}

// Exam is the evaluation session attached to exactly one enrollment.
type Exam struct {
	ID            int64      `json:"id"`
	EnrollmentID  int64      `json:"enrollment_id"`
	Type          ExamType   `json:"type"`
	SiteID        int        `json:"site_id"`
	Room          int        `json:"room"`
	Shift         Shift      `json:"shift"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	Window        TimeWindow `json:"window"`
	Grade         *float64   `json:"grade,omitempty"`
	State         ExamState  `json:"state"`
	Observations  string     `json:"observations,omitempty"`
}

// NewExam schedules an exam policy.OffsetDays after now. A zero room selects
// the first room of the site.
func NewExam(id, enrollmentID int64, programID, siteID int, shift Shift, room int, policy ExamPolicy, now time.Time) *Exam {
	if room <= 0 {
		room = RoomForSite(siteID)
	}
	return &Exam{
		ID:            id,
		EnrollmentID:  enrollmentID,
		Type:          policy.TypeFor(programID),
		SiteID:        siteID,
		Room:          room,
		Shift:         shift,
		ScheduledDate: now.AddDate(0, 0, policy.OffsetDays),
		Window:        WindowForShift(shift),
		State:         ExamScheduled,
	}
}

// RegisterGrade stores the grade and completes the exam. A completed exam must
// be rescheduled before it can be graded again.
func (e *Exam) RegisterGrade(value float64) error {
	if value < MinExamGrade || value > MaxExamGrade {
		return validationError("exam grade must be between 0 and 1000")
	}
	switch e.State {
	case ExamCompleted:
		return stateConflict("exam already graded; reschedule it to grade again")
	case ExamCancelled:
		return stateConflict("exam is cancelled")
	}
	v := value
	e.Grade = &v
	e.State = ExamCompleted
	return nil
}

// Reschedule moves the exam to a future date and reopens it for grading.
func (e *Exam) Reschedule(newDate time.Time, newStart string, now time.Time) error {
	if newDate.Before(now) {
		return validationError("exam cannot be rescheduled into the past")
	}
	start, err := time.Parse(timeOfDayLayout, strings.TrimSpace(newStart))
	if err != nil {
		return validationError("start time must use HH:MM")
	}
	if e.State == ExamCancelled {
		return stateConflict("exam is cancelled")
	}
	e.ScheduledDate = newDate
	e.Window = TimeWindow{
		Start: start.Format(timeOfDayLayout),
		End:   start.Add(examDurationMinutes * time.Minute).Format(timeOfDayLayout),
	}
	e.Grade = nil
	e.State = ExamRescheduled
	return nil
}

// Cancel always succeeds.
func (e *Exam) Cancel() {
	e.State = ExamCancelled
}

// AddObservations replaces the free-text observations.
func (e *Exam) AddObservations(text string) {
	e.Observations = strings.TrimSpace(text)
}

// IsGraded reports whether a grade is on file.
func (e *Exam) IsGraded() bool {
	return e.State == ExamCompleted && e.Grade != nil
}
