package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/repository"
	"github.com/noah-isme/admission-api/pkg/idgen"
)

var fixedNow = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func floatPtr(v float64) *float64 { return &v }

type recordingEvents struct {
	mu     sync.Mutex
	events []models.SeatConfirmedEvent
	err    error
}

func (r *recordingEvents) SeatConfirmed(event models.SeatConfirmedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// admissionHarness wires every service over real in-memory stores.
type admissionHarness struct {
	records     *repository.NationalRecordRepository
	applicants  *repository.ApplicantRepository
	offerings   *repository.OfferingRepository
	enrollments *repository.EnrollmentRepository
	scores      *repository.ScoreRepository
	profiles    *repository.ProfileRepository
	assignments *repository.AssignmentRepository
	metrics     *MetricsService
	events      *recordingEvents

	registry   *RegistryService
	applicant  *ApplicantService
	offering   *OfferingService
	enrollment *EnrollmentService
	exam       *ExamService
	score      *ScoreService
	profile    *ProfileService
	assignment *AssignmentService
}

func newHarness(t *testing.T) *admissionHarness {
	t.Helper()
	h := &admissionHarness{
		records:     repository.NewNationalRecordRepository(),
		applicants:  repository.NewApplicantRepository(),
		offerings:   repository.NewOfferingRepository(),
		enrollments: repository.NewEnrollmentRepository(),
		scores:      repository.NewScoreRepository(),
		profiles:    repository.NewProfileRepository(),
		assignments: repository.NewAssignmentRepository(),
		metrics:     NewMetricsService(),
		events:      &recordingEvents{},
	}

	h.registry = NewRegistryService(h.records, nil, nil)
	h.registry.now = fixedClock
	h.applicant = NewApplicantService(h.records, h.applicants, idgen.NewSequence(0), nil, nil)
	h.applicant.now = fixedClock
	h.offering = NewOfferingService(h.offerings, nil, nil, h.metrics, nil, nil, time.Minute)
	h.enrollment = NewEnrollmentService(h.applicants, h.offerings, h.enrollments, idgen.NewSequence(0), idgen.NewSequence(0), models.DefaultExamPolicy(), 0, nil, nil)
	h.enrollment.now = fixedClock
	h.exam = NewExamService(h.enrollments, h.metrics, nil, nil)
	h.exam.now = fixedClock
	h.score = NewScoreService(h.records, h.applicants, h.enrollments, h.scores, idgen.NewSequence(0), nil, nil)
	h.score.now = fixedClock
	h.profile = NewProfileService(h.records, h.applicants, h.profiles, nil, nil)
	h.profile.now = fixedClock
	h.assignment = NewAssignmentService(h.applicants, h.enrollments, h.scores, h.profiles, h.offering, h.assignments, h.events, idgen.NewSequence(0), h.metrics, nil, nil)
	h.assignment.now = fixedClock
	return h
}

// registerApplicant creates a complete record with the given prior grade and
// promotes it to an applicant.
func (h *admissionHarness) registerApplicant(t *testing.T, identification string, priorGrade float64) *models.Applicant {
	t.Helper()
	ctx := context.Background()
	_, err := h.registry.Create(ctx, CreateNationalRecordRequest{Identification: identification, FirstNames: "MARIA JOSE", LastNames: "ZAMBRANO VERA"})
	require.NoError(t, err)
	_, err = h.registry.CompletePersonal(ctx, identification, PersonalSectionRequest{BirthDate: "2006-03-10", Sex: "MUJER"})
	require.NoError(t, err)
	_, err = h.registry.CompleteLocation(ctx, identification, LocationSectionRequest{Province: "MANABÍ", Canton: "MANTA"})
	require.NoError(t, err)
	_, err = h.registry.CompleteContact(ctx, identification, ContactSectionRequest{Phone: "0991234567", Email: "maria." + identification + "@example.com"})
	require.NoError(t, err)
	_, err = h.registry.CompleteAcademic(ctx, identification, AcademicSectionRequest{Institution: "U.E. MANTA", InstitutionType: "FISCAL", Grade: floatPtr(priorGrade)})
	require.NoError(t, err)
	result, err := h.registry.Validate(ctx, identification)
	require.NoError(t, err)
	require.True(t, result.Complete)

	applicant, err := h.applicant.Create(ctx, CreateApplicantRequest{Identification: identification})
	require.NoError(t, err)
	return applicant
}

func (h *admissionHarness) createOffering(t *testing.T, programID, siteID, total int) *models.ProgramOffering {
	t.Helper()
	o, err := h.offering.Create(context.Background(), CreateOfferingRequest{ProgramID: programID, ProgramName: "Software", SiteID: siteID, TotalSeats: total})
	require.NoError(t, err)
	return o
}

// enrollGraded enrolls the applicant and grades the exam.
func (h *admissionHarness) enrollGraded(t *testing.T, identification string, key models.OfferingKey, rank int, grade float64) *models.Enrollment {
	t.Helper()
	ctx := context.Background()
	e, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: identification, ProgramID: key.ProgramID, SiteID: key.SiteID, Shift: "matutina", Rank: rank})
	require.NoError(t, err)
	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(grade)})
	require.NoError(t, err)
	return e
}

// scoredApplicant runs the whole pipeline up to a final score.
func (h *admissionHarness) scoredApplicant(t *testing.T, identification string, key models.OfferingKey, priorGrade, examGrade float64) *ScoreView {
	t.Helper()
	h.registerApplicant(t, identification, priorGrade)
	e := h.enrollGraded(t, identification, key, 1, examGrade)
	score, err := h.score.Compute(context.Background(), ComputeScoreRequest{Identification: identification, EnrollmentID: e.ID})
	require.NoError(t, err)
	return score
}
