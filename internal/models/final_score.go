package models

import (
	"math"
	"time"
)

// Scoring weights. The prior grade is rescaled from 0-10 to 0-1000 first.
const (
	PriorGradeWeight = 0.30
	ExamGradeWeight  = 0.50
	MeritBonusWeight = 0.20
	priorGradeScale  = 100
	MaxFinalScore    = 1000.0
	MaxMeritBonus    = 1000.0
)

// FinalScore is the weighted composite used to rank applicants.
type FinalScore struct {
	ID             int64     `json:"id"`
	ApplicantID    int64     `json:"applicant_id"`
	Identification string    `json:"identification"`
	EnrollmentID   int64     `json:"enrollment_id"`
	PriorGrade     float64   `json:"prior_grade"`
	ExamGrade      float64   `json:"exam_grade"`
	MeritBonus     float64   `json:"merit_bonus"`
	Total          float64   `json:"total"`
	ComputedAt     time.Time `json:"computed_at"`
}

// ScoreBreakdown shows each weighted component of a score.
type ScoreBreakdown struct {
	PriorComponent float64 `json:"prior_component"`
	ExamComponent  float64 `json:"exam_component"`
	MeritComponent float64 `json:"merit_component"`
	Total          float64 `json:"total"`
	Capped         bool    `json:"capped"`
}

// NewFinalScore validates every input range and computes the total.
func NewFinalScore(id, applicantID int64, identification string, priorGrade, examGrade, meritBonus float64, now time.Time) (*FinalScore, error) {
	if priorGrade < minPriorGrade || priorGrade > maxPriorGrade {
		return nil, validationError("prior grade must be between 0 and 10")
	}
	if examGrade < MinExamGrade || examGrade > MaxExamGrade {
		return nil, validationError("exam grade must be between 0 and 1000")
	}
	if err := validateMerit(meritBonus); err != nil {
		return nil, err
	}
	s := &FinalScore{
		ID:             id,
		ApplicantID:    applicantID,
		Identification: identification,
		PriorGrade:     priorGrade,
		ExamGrade:      examGrade,
		MeritBonus:     meritBonus,
		ComputedAt:     now.UTC(),
	}
	s.Total = s.ComputeTotal()
	return s, nil
}

// ComputeTotal applies the 30/50/20 weights, caps at 1000 and rounds to cents.
func (s *FinalScore) ComputeTotal() float64 {
	return s.Breakdown().Total
}

// Breakdown returns the weighted components.
func (s *FinalScore) Breakdown() ScoreBreakdown {
	prior := s.PriorGrade * priorGradeScale * PriorGradeWeight
	exam := s.ExamGrade * ExamGradeWeight
	merit := s.MeritBonus * MeritBonusWeight
	raw := prior + exam + merit
	total := math.Min(raw, MaxFinalScore)
	return ScoreBreakdown{
		PriorComponent: round2(prior),
		ExamComponent:  round2(exam),
		MeritComponent: round2(merit),
		Total:          round2(total),
		Capped:         raw > MaxFinalScore,
	}
}

// SetMeritBonus replaces the bonus and recomputes the total.
func (s *FinalScore) SetMeritBonus(value float64) error {
	if err := validateMerit(value); err != nil {
		return err
	}
	s.MeritBonus = value
	s.Total = s.ComputeTotal()
	return nil
}

func validateMerit(value float64) error {
	if value < 0 || value > MaxMeritBonus {
		return validationError("merit bonus must be between 0 and 1000")
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
