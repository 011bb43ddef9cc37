package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

type offeringRepository interface {
	Create(offering *models.ProgramOffering) error
	Find(key models.OfferingKey) (*models.ProgramOffering, bool)
	Count() int
	List() []*models.ProgramOffering
}

type offeringCatalog interface {
	ListByPeriod(ctx context.Context, period string) ([]models.CatalogOffering, error)
}

// CreateOfferingRequest registers a program at a site with its total seats.
type CreateOfferingRequest struct {
	ProgramID   int    `json:"program_id" validate:"required,gt=0"`
	ProgramName string `json:"program_name" validate:"required"`
	SiteID      int    `json:"site_id" validate:"required,gt=0"`
	TotalSeats  int    `json:"total_seats" validate:"required,min=1"`
	Level       string `json:"level"`
	Mode        string `json:"mode"`
	Shift       string `json:"shift"`
}

// ExternalSeatRequest replaces the seat breakdown with the national offer values.
type ExternalSeatRequest struct {
	Leveling      int    `json:"leveling" validate:"min=0"`
	FirstSemester int    `json:"first_semester" validate:"min=0"`
	Quota         int    `json:"quota" validate:"min=0"`
	QuotaType     string `json:"quota_type"`
	Focalized     bool   `json:"focalized"`
}

// SeatRequest names the segment of a manual reserve or release.
type SeatRequest struct {
	Segment string `json:"segment" validate:"required"`
}

// Availability is the free seat count of an offering, overall or per segment.
type Availability struct {
	ProgramID int             `json:"program_id"`
	SiteID    int             `json:"site_id"`
	Segment   *models.Segment `json:"segment,omitempty"`
	Available int             `json:"available"`
}

// ImportResult summarises a catalog import.
type ImportResult struct {
	Period   string   `json:"period"`
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Failed   []string `json:"failed,omitempty"`
}

// OfferingService manages program offerings and their seat ledgers.
type OfferingService struct {
	repo      offeringRepository
	catalog   offeringCatalog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	statsTTL  time.Duration
}

// NewOfferingService constructs an OfferingService. catalog and cache may be nil.
func NewOfferingService(repo offeringRepository, catalog offeringCatalog, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, statsTTL time.Duration) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{
		repo:      repo,
		catalog:   catalog,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		statsTTL:  statsTTL,
	}
}

// Create registers an offering at a known site.
func (s *OfferingService) Create(ctx context.Context, req CreateOfferingRequest) (*models.ProgramOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid offering payload")
	}
	if _, ok := models.FindSite(req.SiteID); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("site %d does not exist", req.SiteID))
	}
	offering, err := models.NewProgramOffering(models.OfferingInfo{
		ProgramID:   req.ProgramID,
		ProgramName: req.ProgramName,
		SiteID:      req.SiteID,
		Level:       req.Level,
		Mode:        req.Mode,
		Shift:       req.Shift,
	}, req.TotalSeats, int64(s.repo.Count()+1))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(offering); err != nil {
		return nil, storeError(err, "offering")
	}
	s.logger.Info("offering created", zap.String("offering", offering.Key().String()), zap.Int("total_seats", req.TotalSeats))
	return offering, nil
}

// List returns every offering ordered by program then site.
func (s *OfferingService) List(ctx context.Context) []*models.ProgramOffering {
	return s.repo.List()
}

// Find returns the offering of a (program, site) pair.
func (s *OfferingService) Find(ctx context.Context, key models.OfferingKey) (*models.ProgramOffering, bool) {
	return s.repo.Find(key)
}

// ConfigureExternal applies the national offer breakdown to an offering
// without reservations.
func (s *OfferingService) ConfigureExternal(ctx context.Context, key models.OfferingKey, req ExternalSeatRequest) (*models.ProgramOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid seat configuration payload")
	}
	offering, ok := s.repo.Find(key)
	if !ok {
		return nil, notFound("offering")
	}
	if err := offering.ConfigureFromExternal(models.ExternalSeatConfig{
		Leveling:      req.Leveling,
		FirstSemester: req.FirstSemester,
		Quota:         req.Quota,
		QuotaType:     req.QuotaType,
		Focalized:     req.Focalized,
	}); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, key)
	s.logger.Info("offering reconfigured", zap.String("offering", key.String()), zap.Int("total_seats", offering.Pools().Total))
	return offering, nil
}

// Availability returns free seats overall, or for one segment when segment is set.
func (s *OfferingService) Availability(ctx context.Context, key models.OfferingKey, segment string) (Availability, error) {
	offering, ok := s.repo.Find(key)
	if !ok {
		return Availability{}, notFound("offering")
	}
	result := Availability{ProgramID: key.ProgramID, SiteID: key.SiteID}
	if strings.TrimSpace(segment) == "" {
		result.Available = offering.AvailableTotal()
		return result, nil
	}
	seg, err := models.ParseSegment(segment)
	if err != nil {
		return Availability{}, err
	}
	result.Segment = &seg
	result.Available = offering.Available(seg)
	return result, nil
}

// Reserve takes one seat of the segment.
func (s *OfferingService) Reserve(ctx context.Context, key models.OfferingKey, req SeatRequest) (Availability, error) {
	offering, seg, err := s.seatTarget(key, req)
	if err != nil {
		return Availability{}, err
	}
	if !s.reserve(ctx, offering, seg) {
		return Availability{}, appErrors.Clone(appErrors.ErrNoSeatsAvailable, fmt.Sprintf("no %s seats available in offering %s", seg, key))
	}
	return Availability{ProgramID: key.ProgramID, SiteID: key.SiteID, Segment: &seg, Available: offering.Available(seg)}, nil
}

// Release gives one seat of the segment back. Releasing an empty segment is
// logged and otherwise ignored.
func (s *OfferingService) Release(ctx context.Context, key models.OfferingKey, req SeatRequest) (Availability, error) {
	offering, seg, err := s.seatTarget(key, req)
	if err != nil {
		return Availability{}, err
	}
	s.release(ctx, offering, seg)
	return Availability{ProgramID: key.ProgramID, SiteID: key.SiteID, Segment: &seg, Available: offering.Available(seg)}, nil
}

// Stats returns occupancy statistics, served from the cache when enabled.
func (s *OfferingService) Stats(ctx context.Context, key models.OfferingKey) (*models.OfferingStats, error) {
	var cached models.OfferingStats
	if s.cache.Get(ctx, OfferingStatsKey(key), &cached) {
		return &cached, nil
	}
	offering, ok := s.repo.Find(key)
	if !ok {
		return nil, notFound("offering")
	}
	stats := offering.Stats()
	s.cache.Set(ctx, OfferingStatsKey(key), stats, s.statsTTL)
	return &stats, nil
}

// ImportCatalog creates the offerings of a period from the national catalog.
// Offerings that already exist are left untouched.
func (s *OfferingService) ImportCatalog(ctx context.Context, period string) (*ImportResult, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "offering catalog is not configured")
	}
	start := time.Now()
	rows, err := s.catalog.ListByPeriod(ctx, period)
	s.metrics.ObserveDBQuery("offering_catalog_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read offering catalog")
	}

	result := &ImportResult{Period: period}
	for _, row := range rows {
		key := models.OfferingKey{ProgramID: row.ProgramID, SiteID: row.SiteID}
		if _, exists := s.repo.Find(key); exists {
			result.Existing++
			continue
		}
		if err := s.importRow(row); err != nil {
			s.logger.Warn("catalog row skipped", zap.String("offering", key.String()), zap.Error(err))
			result.Failed = append(result.Failed, key.String())
			continue
		}
		result.Created++
	}
	s.logger.Info("offering catalog imported",
		zap.String("period", period),
		zap.Int("created", result.Created),
		zap.Int("existing", result.Existing),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *OfferingService) importRow(row models.CatalogOffering) error {
	cfg := row.SeatConfig()
	total := cfg.Leveling + cfg.FirstSemester + cfg.Quota
	offering, err := models.NewProgramOffering(row.OfferingInfo, total, int64(s.repo.Count()+1))
	if err != nil {
		return err
	}
	if err := offering.ConfigureFromExternal(cfg); err != nil {
		return err
	}
	return s.repo.Create(offering)
}

func (s *OfferingService) seatTarget(key models.OfferingKey, req SeatRequest) (*models.ProgramOffering, models.Segment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", validationFailed(err, "invalid seat payload")
	}
	seg, err := models.ParseSegment(req.Segment)
	if err != nil {
		return nil, "", err
	}
	offering, ok := s.repo.Find(key)
	if !ok {
		return nil, "", notFound("offering")
	}
	return offering, seg, nil
}

// reserve and release are shared with the assignment workflow so every seat
// movement is counted and invalidates the cached statistics.
func (s *OfferingService) reserve(ctx context.Context, offering *models.ProgramOffering, seg models.Segment) bool {
	if !offering.Reserve(seg) {
		s.metrics.RecordSeatOperation("reserve", seg, OutcomeRejected)
		return false
	}
	s.metrics.RecordSeatOperation("reserve", seg, OutcomeGranted)
	s.invalidateStats(ctx, offering.Key())
	return true
}

func (s *OfferingService) release(ctx context.Context, offering *models.ProgramOffering, seg models.Segment) {
	if !offering.Release(seg) {
		s.metrics.RecordSeatOperation("release", seg, OutcomeNoop)
		s.logger.Warn("release ignored: no reserved seat in segment",
			zap.String("offering", offering.Key().String()),
			zap.String("segment", string(seg)),
		)
		return
	}
	s.metrics.RecordSeatOperation("release", seg, OutcomeReleased)
	s.invalidateStats(ctx, offering.Key())
}

func (s *OfferingService) invalidateStats(ctx context.Context, key models.OfferingKey) {
	s.cache.Invalidate(ctx, OfferingStatsKey(key))
}
