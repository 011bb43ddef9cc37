package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/repository"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

const tracerName = "github.com/noah-isme/admission-api/internal/service"

type assignmentRepository interface {
	CreateIfNoOpen(assignment *models.SeatAssignment) (*models.SeatAssignment, error)
	FindByID(id int64) (*models.SeatAssignment, bool)
	FindOpenByApplicant(applicantID int64) (*models.SeatAssignment, bool)
	ListByIdentification(identification string) []models.SeatAssignment
	ListByOffering(key models.OfferingKey) []models.SeatAssignment
	Update(id int64, fn func(*models.SeatAssignment) error) (*models.SeatAssignment, error)
	CountByState() map[models.AssignmentState]int
}

type offeringEnrollments interface {
	ListByApplicant(applicantID int64) []models.Enrollment
	ListByOffering(key models.OfferingKey) []models.Enrollment
}

type scoreLookup interface {
	FindByApplicant(applicantID int64) (*models.FinalScore, bool)
}

type profileLookup interface {
	FindByApplicant(applicantID int64) (*models.AffirmativeProfile, bool)
}

type seatEvents interface {
	SeatConfirmed(event models.SeatConfirmedEvent) error
}

// CreateAssignmentRequest assigns a seat manually. Segment defaults to the
// applicant's profile segment.
type CreateAssignmentRequest struct {
	Identification string `json:"identification" validate:"required,len=10,numeric"`
	ProgramID      int    `json:"program_id" validate:"required,gt=0"`
	SiteID         int    `json:"site_id" validate:"required,gt=0"`
	Segment        string `json:"segment"`
}

// RejectAssignmentRequest carries an optional rejection reason.
type RejectAssignmentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// SkippedCandidate is an applicant the allocation run could not seat.
type SkippedCandidate struct {
	Identification string         `json:"identification"`
	Segment        models.Segment `json:"segment,omitempty"`
	FinalScore     float64        `json:"final_score"`
	Reason         string         `json:"reason"`
}

// AllocationResult is the outcome of an allocation run for one offering.
type AllocationResult struct {
	ProgramID int                     `json:"program_id"`
	SiteID    int                     `json:"site_id"`
	Assigned  []models.SeatAssignment `json:"assigned"`
	Skipped   []SkippedCandidate      `json:"skipped"`
	Available int                     `json:"available"`
}

type candidate struct {
	enrollment models.Enrollment
	score      *models.FinalScore
	profile    *models.AffirmativeProfile
}

// AssignmentService reserves seats for applicants and drives the assignment
// lifecycle.
type AssignmentService struct {
	applicants  applicantRepository
	enrollments offeringEnrollments
	scores      scoreLookup
	profiles    profileLookup
	offerings   *OfferingService
	repo        assignmentRepository
	events      seatEvents
	ids         idSource
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	tracer      trace.Tracer
	now         clock
}

// NewAssignmentService constructs an AssignmentService. events may be nil.
func NewAssignmentService(
	applicants applicantRepository,
	enrollments offeringEnrollments,
	scores scoreLookup,
	profiles profileLookup,
	offerings *OfferingService,
	repo assignmentRepository,
	events seatEvents,
	ids idSource,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		applicants:  applicants,
		enrollments: enrollments,
		scores:      scores,
		profiles:    profiles,
		offerings:   offerings,
		repo:        repo,
		events:      events,
		ids:         ids,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		now:         systemClock,
	}
}

// Create reserves a seat and records a PENDING assignment.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.SeatAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid assignment payload")
	}
	applicant, ok := s.applicants.FindByIdentification(req.Identification)
	if !ok {
		return nil, notFound("applicant")
	}
	key := models.OfferingKey{ProgramID: req.ProgramID, SiteID: req.SiteID}
	offering, ok := s.offerings.Find(ctx, key)
	if !ok {
		return nil, notFound("offering")
	}
	score, ok := s.scores.FindByApplicant(applicant.ID)
	if !ok {
		return nil, stateConflict("final score has not been computed")
	}
	if !s.enrolledIn(applicant.ID, key) {
		return nil, stateConflict("applicant is not enrolled in offering " + key.String())
	}
	if _, open := s.repo.FindOpenByApplicant(applicant.ID); open {
		return nil, stateConflict("applicant already holds an open assignment")
	}
	profile := s.profileOf(applicant)

	segment := profile.Segment
	if strings.TrimSpace(req.Segment) != "" {
		seg, err := models.ParseSegment(req.Segment)
		if err != nil {
			return nil, err
		}
		segment = seg
	}
	if !s.offerings.reserve(ctx, offering, segment) {
		return nil, appErrors.Clone(appErrors.ErrNoSeatsAvailable, fmt.Sprintf("no %s seats available in offering %s", segment, key))
	}

	assignment, err := s.store(ctx, offering, score, profile, segment)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seat assigned",
		zap.Int64("assignment_id", assignment.ID),
		zap.String("identification", assignment.Identification),
		zap.String("offering", key.String()),
		zap.String("segment", string(segment)),
	)
	return assignment, nil
}

// FindByIdentification returns every assignment of the applicant, newest first.
func (s *AssignmentService) FindByIdentification(ctx context.Context, identification string) []models.SeatAssignment {
	return s.repo.ListByIdentification(strings.TrimSpace(identification))
}

// ListByOffering returns the assignments of an offering, newest first.
func (s *AssignmentService) ListByOffering(ctx context.Context, key models.OfferingKey) []models.SeatAssignment {
	return s.repo.ListByOffering(key)
}

// Summary counts assignments per state.
func (s *AssignmentService) Summary(ctx context.Context) map[models.AssignmentState]int {
	return s.repo.CountByState()
}

// Confirm accepts a pending seat and publishes seat.confirmed. Confirming an
// already confirmed seat changes nothing and publishes nothing.
func (s *AssignmentService) Confirm(ctx context.Context, id int64) (*models.SeatAssignment, error) {
	var changed bool
	assignment, err := s.repo.Update(id, func(a *models.SeatAssignment) error {
		var err error
		changed, err = a.Confirm(s.now())
		return err
	})
	if err != nil {
		return nil, storeError(err, "assignment")
	}
	if !changed {
		return assignment, nil
	}
	s.metrics.RecordAssignmentTransition(models.AssignmentConfirmed)
	s.publishConfirmed(ctx, assignment)
	s.logger.Info("seat confirmed", zap.Int64("assignment_id", id), zap.String("identification", assignment.Identification))
	return assignment, nil
}

// Reject gives the seat up and returns it to its segment pool.
func (s *AssignmentService) Reject(ctx context.Context, id int64, req RejectAssignmentRequest) (*models.SeatAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid rejection payload")
	}
	return s.close(ctx, id, models.AssignmentRejected, func(a *models.SeatAssignment) error { return a.Reject(req.Reason) })
}

// Expire lapses a pending seat and returns it to its segment pool.
func (s *AssignmentService) Expire(ctx context.Context, id int64) (*models.SeatAssignment, error) {
	return s.close(ctx, id, models.AssignmentExpired, func(a *models.SeatAssignment) error { return a.Expire() })
}

// Allocate seats the offering's eligible candidates by priority, then final
// score, then preference rank. Candidates whose segment is full fall back to
// GENERAL and are skipped when that is full too.
func (s *AssignmentService) Allocate(ctx context.Context, key models.OfferingKey) (*AllocationResult, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.allocate", trace.WithAttributes(
		attribute.Int("offering.program_id", key.ProgramID),
		attribute.Int("offering.site_id", key.SiteID),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveAllocation(time.Since(start)) }()

	offering, ok := s.offerings.Find(ctx, key)
	if !ok {
		err := notFound("offering")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidates, unprofiled := s.candidates(key)
	sortCandidates(candidates)
	span.SetAttributes(attribute.Int("allocation.candidates", len(candidates)))

	result := &AllocationResult{
		ProgramID: key.ProgramID,
		SiteID:    key.SiteID,
		Assigned:  make([]models.SeatAssignment, 0),
		Skipped:   unprofiled,
	}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		segment := c.profile.Segment
		if !s.offerings.reserve(ctx, offering, segment) {
			if segment == models.SegmentGeneral || !s.offerings.reserve(ctx, offering, models.SegmentGeneral) {
				result.Skipped = append(result.Skipped, skipped(c, "no seats available"))
				continue
			}
			segment = models.SegmentGeneral
		}
		assignment, err := s.store(ctx, offering, c.score, c.profile, segment)
		if err != nil {
			if appErrors.HasCode(err, appErrors.ErrStateConflict.Code) {
				result.Skipped = append(result.Skipped, skipped(c, "already holds an open assignment"))
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		result.Assigned = append(result.Assigned, *assignment)
	}
	result.Available = offering.AvailableTotal()

	span.SetAttributes(
		attribute.Int("allocation.assigned", len(result.Assigned)),
		attribute.Int("allocation.skipped", len(result.Skipped)),
	)
	s.logger.Info("allocation finished",
		zap.String("offering", key.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("unprofiled", len(unprofiled)),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// candidates are applicants with an active or completed enrollment in the
// offering, a graded exam and a final score, and no open assignment anywhere.
// Applicants without an affirmative profile are reported as skipped instead.
func (s *AssignmentService) candidates(key models.OfferingKey) ([]candidate, []SkippedCandidate) {
	out := make([]candidate, 0)
	unprofiled := make([]SkippedCandidate, 0)
	for _, e := range s.enrollments.ListByOffering(key) {
		if e.State == models.EnrollmentCancelled || e.Exam == nil || !e.Exam.IsGraded() {
			continue
		}
		score, ok := s.scores.FindByApplicant(e.ApplicantID)
		if !ok {
			continue
		}
		if _, open := s.repo.FindOpenByApplicant(e.ApplicantID); open {
			continue
		}
		profile, ok := s.profiles.FindByApplicant(e.ApplicantID)
		if !ok {
			unprofiled = append(unprofiled, SkippedCandidate{
				Identification: e.Identification,
				FinalScore:     score.Total,
				Reason:         "no affirmative profile",
			})
			continue
		}
		out = append(out, candidate{enrollment: e, score: score, profile: profile})
	}
	return out, unprofiled
}

func sortCandidates(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.profile.Priority != b.profile.Priority {
			return a.profile.Priority < b.profile.Priority
		}
		if a.score.Total != b.score.Total {
			return a.score.Total > b.score.Total
		}
		if a.enrollment.Rank != b.enrollment.Rank {
			return a.enrollment.Rank < b.enrollment.Rank
		}
		return a.enrollment.ID < b.enrollment.ID
	})
}

func skipped(c candidate, reason string) SkippedCandidate {
	return SkippedCandidate{
		Identification: c.enrollment.Identification,
		Segment:        c.profile.Segment,
		FinalScore:     c.score.Total,
		Reason:         reason,
	}
}

// store records an assignment for a seat already reserved in segment. The
// seat is released again when the assignment cannot be stored.
func (s *AssignmentService) store(ctx context.Context, offering *models.ProgramOffering, score *models.FinalScore, profile *models.AffirmativeProfile, segment models.Segment) (*models.SeatAssignment, error) {
	assignment, err := models.NewSeatAssignment(s.ids.Next(), score, profile, offering.Key(), segment, s.now())
	if err != nil {
		s.offerings.release(ctx, offering, segment)
		return nil, err
	}
	if _, err := s.repo.CreateIfNoOpen(assignment); err != nil {
		s.offerings.release(ctx, offering, segment)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, stateConflict("applicant already holds an open assignment")
		}
		return nil, storeError(err, "assignment")
	}
	s.metrics.RecordAssignmentTransition(models.AssignmentPending)
	return assignment, nil
}

func (s *AssignmentService) close(ctx context.Context, id int64, state models.AssignmentState, transition func(*models.SeatAssignment) error) (*models.SeatAssignment, error) {
	assignment, err := s.repo.Update(id, transition)
	if err != nil {
		return nil, storeError(err, "assignment")
	}
	if offering, ok := s.offerings.Find(ctx, assignment.OfferingKey()); ok {
		s.offerings.release(ctx, offering, assignment.Segment)
	} else {
		s.logger.Warn("offering missing for closed assignment", zap.Int64("assignment_id", id), zap.String("offering", assignment.OfferingKey().String()))
	}
	s.metrics.RecordAssignmentTransition(state)
	s.logger.Info("seat released", zap.Int64("assignment_id", id), zap.String("state", string(state)))
	return assignment, nil
}

func (s *AssignmentService) enrolledIn(applicantID int64, key models.OfferingKey) bool {
	for _, e := range s.enrollments.ListByApplicant(applicantID) {
		if e.State != models.EnrollmentCancelled && e.ProgramID == key.ProgramID && e.SiteID == key.SiteID {
			return true
		}
	}
	return false
}

func (s *AssignmentService) profileOf(applicant *models.Applicant) *models.AffirmativeProfile {
	if profile, ok := s.profiles.FindByApplicant(applicant.ID); ok {
		return profile
	}
	return models.NewAffirmativeProfile(applicant.ID, applicant.Identification, s.now())
}

func (s *AssignmentService) publishConfirmed(ctx context.Context, a *models.SeatAssignment) {
	if s.events == nil {
		return
	}
	event := models.SeatConfirmedEvent{
		EventID:        uuid.NewString(),
		AssignmentID:   a.ID,
		ApplicantID:    a.ApplicantID,
		Identification: a.Identification,
		ProgramID:      a.ProgramID,
		SiteID:         a.SiteID,
		Segment:        a.Segment,
		FinalScore:     a.FinalScore,
	}
	if a.ConfirmedAt != nil {
		event.ConfirmedAt = a.ConfirmedAt.Format(time.RFC3339)
	}
	if offering, ok := s.offerings.Find(ctx, a.OfferingKey()); ok {
		info := offering.Info()
		event.ProgramName = info.ProgramName
		event.SiteName = info.SiteName
	}
	if err := s.events.SeatConfirmed(event); err != nil {
		s.logger.Error("failed to queue seat confirmation event", zap.Int64("assignment_id", a.ID), zap.Error(err))
	}
}
