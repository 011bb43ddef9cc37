package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
)

type profileRepository interface {
	FindByApplicant(applicantID int64) (*models.AffirmativeProfile, bool)
	Upsert(applicantID int64, create func() *models.AffirmativeProfile, fn func(*models.AffirmativeProfile) error) (*models.AffirmativeProfile, error)
}

// RuralityInput is the school the applicant graduated from.
type RuralityInput struct {
	InstitutionType string `json:"institution_type" validate:"required"`
	Zone            string `json:"zone" validate:"required"`
}

// DisabilityInput is the applicant's registered disability.
type DisabilityInput struct {
	Percentage int  `json:"percentage" validate:"min=0,max=100"`
	HasCard    bool `json:"has_card"`
}

// MeritInput is the applicant's academic distinction.
type MeritInput struct {
	HonorRoll   bool   `json:"honor_roll"`
	Distinction string `json:"distinction"`
}

// LastCohortInput marks graduates of the current school year.
type LastCohortInput struct {
	IsLastCohort bool `json:"is_last_cohort"`
	Ethnic       bool `json:"ethnic"`
}

// HistoricalSeatInput records a seat accepted in an earlier period.
type HistoricalSeatInput struct {
	HasSeat bool   `json:"has_seat"`
	Active  bool   `json:"active"`
	Period  string `json:"period" validate:"max=20"`
}

// ApplyProfileRequest updates only the provided affirmative action inputs.
type ApplyProfileRequest struct {
	Quintile       *int                 `json:"quintile" validate:"omitempty,min=1,max=5"`
	Rurality       *RuralityInput       `json:"rurality"`
	Disability     *DisabilityInput     `json:"disability"`
	Ethnicity      *string              `json:"ethnicity"`
	Merit          *MeritInput          `json:"merit"`
	LastCohort     *LastCohortInput     `json:"last_cohort"`
	ViolenceVictim *bool                `json:"violence_victim"`
	Migrant        *bool                `json:"migrant"`
	HistoricalSeat *HistoricalSeatInput `json:"historical_seat"`
}

// ProfileService maintains affirmative action profiles.
type ProfileService struct {
	records    recordLookup
	applicants applicantRepository
	repo       profileRepository
	validator  *validator.Validate
	logger     *zap.Logger
	now        clock
}

// NewProfileService constructs a ProfileService.
func NewProfileService(records recordLookup, applicants applicantRepository, repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{records: records, applicants: applicants, repo: repo, validator: validate, logger: logger, now: systemClock}
}

// Apply updates the profile and recomputes the segment. A new profile is
// seeded with the previous seat recorded in the national registry.
func (s *ProfileService) Apply(ctx context.Context, identification string, req ApplyProfileRequest) (*models.AffirmativeProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid profile payload")
	}
	applicant, ok := s.applicants.FindByIdentification(strings.TrimSpace(identification))
	if !ok {
		return nil, notFound("applicant")
	}
	now := s.now()

	create := func() *models.AffirmativeProfile {
		p := models.NewAffirmativeProfile(applicant.ID, applicant.Identification, now)
		if record, ok := s.records.FindByIdentification(applicant.Identification); ok && record.PreviousSeat {
			p.MarkHistoricalSeat(true, false, "", now)
		}
		return p
	}
	profile, err := s.repo.Upsert(applicant.ID, create, func(p *models.AffirmativeProfile) error {
		return applyProfile(p, req, now)
	})
	if err != nil {
		return nil, storeError(err, "affirmative profile")
	}
	s.logger.Info("affirmative profile updated",
		zap.String("identification", applicant.Identification),
		zap.String("segment", string(profile.Segment)),
		zap.Int("priority", profile.Priority),
	)
	return profile, nil
}

// Find returns the applicant's profile.
func (s *ProfileService) Find(ctx context.Context, identification string) (*models.AffirmativeProfile, bool) {
	applicant, ok := s.applicants.FindByIdentification(strings.TrimSpace(identification))
	if !ok {
		return nil, false
	}
	return s.repo.FindByApplicant(applicant.ID)
}

func applyProfile(p *models.AffirmativeProfile, req ApplyProfileRequest, now time.Time) error {
	if req.Quintile != nil {
		if err := p.ApplySocioeconomicCondition(*req.Quintile, now); err != nil {
			return err
		}
	}
	if req.Rurality != nil {
		p.ApplyRurality(req.Rurality.InstitutionType, req.Rurality.Zone, now)
	}
	if req.Disability != nil {
		if err := p.ApplyDisability(req.Disability.Percentage, req.Disability.HasCard, now); err != nil {
			return err
		}
	}
	if req.Ethnicity != nil {
		p.ApplyEthnicSelfIdentification(*req.Ethnicity, now)
	}
	if req.Merit != nil {
		p.ApplyAcademicMerit(req.Merit.HonorRoll, req.Merit.Distinction, now)
	}
	if req.LastCohort != nil {
		p.ApplyLastCohort(req.LastCohort.IsLastCohort, req.LastCohort.Ethnic, now)
	}
	if req.ViolenceVictim != nil {
		p.ApplyViolenceVictim(*req.ViolenceVictim, now)
	}
	if req.Migrant != nil {
		p.ApplyMigrant(*req.Migrant, now)
	}
	if req.HistoricalSeat != nil {
		p.MarkHistoricalSeat(req.HistoricalSeat.HasSeat, req.HistoricalSeat.Active, req.HistoricalSeat.Period, now)
	}
	return nil
}
