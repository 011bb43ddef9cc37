package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*admissionHarness, *ExportService) {
	t.Helper()
	h := newHarness(t)
	h.createOffering(t, 101, 1, 10)
	h.scoredApplicant(t, "0912345678", softwareAtManta, 8, 700)
	h.scoredApplicant(t, "1316202082", softwareAtManta, 9, 900)
	_, err := h.profile.Apply(context.Background(), "0912345678", ApplyProfileRequest{Quintile: intPtr(1)})
	require.NoError(t, err)
	_, err = h.assignment.Allocate(context.Background(), softwareAtManta)
	require.NoError(t, err)

	svc := NewExportService(h.offering, h.assignment, nil, nil, nil)
	svc.now = fixedClock
	return h, svc
}

func TestExportServiceAssignmentRosterCSV(t *testing.T) {
	_, svc := newExportFixture(t)

	file, err := svc.AssignmentRoster(context.Background(), softwareAtManta, "")
	require.NoError(t, err)
	assert.Equal(t, "roster-101-1-20251001-0900.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, rosterHeaders, records[0])
	assert.Equal(t, "0912345678", records[1][1])
	assert.Equal(t, string(models.SegmentQuota), records[1][2])
	assert.Equal(t, "1316202082", records[2][1])
	assert.Equal(t, "720.00", records[2][4])
	assert.Equal(t, "", records[2][7])
}

func TestExportServiceAssignmentRosterPDF(t *testing.T) {
	_, svc := newExportFixture(t)

	file, err := svc.AssignmentRoster(context.Background(), softwareAtManta, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "roster-101-1-20251001-0900.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceAssignmentRosterErrors(t *testing.T) {
	_, svc := newExportFixture(t)

	_, err := svc.AssignmentRoster(context.Background(), softwareAtManta, "xlsx")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.AssignmentRoster(context.Background(), models.OfferingKey{ProgramID: 9, SiteID: 1}, "csv")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}
