package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/repository"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

type fakeCatalog struct {
	rows   []models.CatalogOffering
	err    error
	period string
}

func (f *fakeCatalog) ListByPeriod(_ context.Context, period string) ([]models.CatalogOffering, error) {
	f.period = period
	return f.rows, f.err
}

var softwareAtManta = models.OfferingKey{ProgramID: 101, SiteID: 1}

func TestOfferingServiceCreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	o := h.createOffering(t, 101, 1, 100)
	assert.Equal(t, "SOFTWARE", o.Info().ProgramName)
	assert.Equal(t, 244901, o.Info().OfferID)
	assert.Equal(t, 5, o.Pools().Quota)

	_, err := h.offering.Create(ctx, CreateOfferingRequest{ProgramID: 101, ProgramName: "Software", SiteID: 1, TotalSeats: 10})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	_, err = h.offering.Create(ctx, CreateOfferingRequest{ProgramID: 102, ProgramName: "Civil", SiteID: 42, TotalSeats: 10})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = h.offering.Create(ctx, CreateOfferingRequest{ProgramID: 102, ProgramName: "Civil", SiteID: 1, TotalSeats: 0})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = h.offering.Create(ctx, CreateOfferingRequest{ProgramID: 102, ProgramName: "Civil", SiteID: 1, TotalSeats: 10, Mode: "ONLINE"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	second := h.createOffering(t, 102, 2, 10)
	assert.Equal(t, 244902, second.Info().OfferID)
	assert.Len(t, h.offering.List(ctx), 2)
}

func TestOfferingServiceReserveRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)

	avail, err := h.offering.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "quota"})
	require.NoError(t, err)
	assert.Equal(t, 0, avail.Available)

	_, err = h.offering.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "QUOTA"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoSeatsAvailable.Code))

	_, err = h.offering.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "VIP"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = h.offering.Reserve(ctx, models.OfferingKey{ProgramID: 9, SiteID: 1}, SeatRequest{Segment: "QUOTA"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	avail, err = h.offering.Release(ctx, softwareAtManta, SeatRequest{Segment: "QUOTA"})
	require.NoError(t, err)
	assert.Equal(t, 1, avail.Available)

	avail, err = h.offering.Release(ctx, softwareAtManta, SeatRequest{Segment: "MERIT"})
	require.NoError(t, err)
	assert.Equal(t, 2, avail.Available)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.seatOperations.WithLabelValues("reserve", "QUOTA", OutcomeGranted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.seatOperations.WithLabelValues("reserve", "QUOTA", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.seatOperations.WithLabelValues("release", "MERIT", OutcomeNoop)))
}

func TestOfferingServiceAvailability(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)
	_, err := h.offering.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "LAST_COHORT"})
	require.NoError(t, err)

	total, err := h.offering.Availability(ctx, softwareAtManta, "")
	require.NoError(t, err)
	assert.Nil(t, total.Segment)
	assert.Equal(t, 9, total.Available)

	general, err := h.offering.Availability(ctx, softwareAtManta, "general")
	require.NoError(t, err)
	require.NotNil(t, general.Segment)
	assert.Equal(t, models.SegmentGeneral, *general.Segment)
	assert.Equal(t, 5, general.Available)
}

func TestOfferingServiceConfigureExternal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createOffering(t, 101, 1, 10)

	o, err := h.offering.ConfigureExternal(ctx, softwareAtManta, ExternalSeatRequest{Leveling: 30, FirstSemester: 15, Quota: 5, QuotaType: "pueblos"})
	require.NoError(t, err)
	assert.Equal(t, 50, o.Pools().Total)
	assert.Equal(t, 5, o.Pools().Quota)

	_, err = h.offering.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "GENERAL"})
	require.NoError(t, err)
	_, err = h.offering.ConfigureExternal(ctx, softwareAtManta, ExternalSeatRequest{Leveling: 10})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	_, err = h.offering.ConfigureExternal(ctx, softwareAtManta, ExternalSeatRequest{Leveling: -1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestOfferingServiceStatsCached(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	offerings := repository.NewOfferingRepository()
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	svc := NewOfferingService(offerings, nil, cache, metrics, nil, nil, 30*time.Second)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOfferingRequest{ProgramID: 101, ProgramName: "Software", SiteID: 1, TotalSeats: 10})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, softwareAtManta)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Assigned)
	assert.True(t, repo.has(OfferingStatsKey(softwareAtManta)))
	assert.Equal(t, 30*time.Second, repo.ttls[OfferingStatsKey(softwareAtManta)])

	cached, err := svc.Stats(ctx, softwareAtManta)
	require.NoError(t, err)
	assert.Equal(t, stats.Pools, cached.Pools)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))

	_, err = svc.Reserve(ctx, softwareAtManta, SeatRequest{Segment: "MERIT"})
	require.NoError(t, err)
	assert.False(t, repo.has(OfferingStatsKey(softwareAtManta)))

	fresh, err := svc.Stats(ctx, softwareAtManta)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Assigned)
	assert.Equal(t, 1, fresh.BySegment[models.SegmentMerit])
	assert.Equal(t, 10.0, fresh.OccupancyPct)

	_, err = svc.Stats(ctx, models.OfferingKey{ProgramID: 1, SiteID: 1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestOfferingServiceImportCatalog(t *testing.T) {
	offerings := repository.NewOfferingRepository()
	catalog := &fakeCatalog{rows: []models.CatalogOffering{
		{OfferingInfo: models.OfferingInfo{ProgramID: 101, SiteID: 1, ProgramName: "Software", OfferID: 245001}, Period: "2025-2S", Leveling: 40, FirstSemester: 50, Quota: 10, QuotaType: "CUPOS_PUEBLOS"},
		{OfferingInfo: models.OfferingInfo{ProgramID: 102, SiteID: 2, ProgramName: "Civil"}, Period: "2025-2S", Leveling: 20},
		{OfferingInfo: models.OfferingInfo{ProgramID: 103, SiteID: 1, ProgramName: "Broken"}, Period: "2025-2S"},
	}}
	svc := NewOfferingService(offerings, catalog, nil, nil, nil, nil, 0)
	ctx := context.Background()

	result, err := svc.ImportCatalog(ctx, "2025-2S")
	require.NoError(t, err)
	assert.Equal(t, "2025-2S", catalog.period)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, []string{"103:1"}, result.Failed)

	o, ok := svc.Find(ctx, softwareAtManta)
	require.True(t, ok)
	assert.Equal(t, 245001, o.Info().OfferID)
	assert.Equal(t, 100, o.Pools().Total)
	assert.Equal(t, 10, o.Pools().Quota)
	assert.Equal(t, "CUPOS_PUEBLOS", o.Pools().QuotaType)

	again, err := svc.ImportCatalog(ctx, "2025-2S")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Existing)

	catalog.err = errors.New("connection reset")
	_, err = svc.ImportCatalog(ctx, "2025-2S")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))

	noCatalog := NewOfferingService(offerings, nil, nil, nil, nil, nil, 0)
	_, err = noCatalog.ImportCatalog(ctx, "2025-2S")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnavailable.Code))
}
