package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/pkg/export"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var rosterHeaders = []string{"ID", "Identification", "Segment", "Priority", "Final Score", "State", "Assigned At", "Confirmed At"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

type rosterSource interface {
	Find(ctx context.Context, key models.OfferingKey) (*models.ProgramOffering, bool)
}

type assignmentLister interface {
	ListByOffering(ctx context.Context, key models.OfferingKey) []models.SeatAssignment
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders assignment rosters.
type ExportService struct {
	offerings   rosterSource
	assignments assignmentLister
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         clock
}

// NewExportService constructs an ExportService.
func NewExportService(offerings rosterSource, assignments assignmentLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{offerings: offerings, assignments: assignments, csv: csv, pdf: pdf, logger: logger, now: systemClock}
}

// AssignmentRoster renders the offering's assignments ordered by priority
// then score.
func (s *ExportService) AssignmentRoster(ctx context.Context, key models.OfferingKey, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	offering, ok := s.offerings.Find(ctx, key)
	if !ok {
		return nil, notFound("offering")
	}

	info := offering.Info()
	dataset := rosterDataset(info, s.assignments.ListByOffering(ctx, key))
	stamp := s.now().Format("20060102-1504")
	base := fmt.Sprintf("roster-%d-%d-%s", key.ProgramID, key.SiteID, stamp)

	var (
		body []byte
		err  error
		file = &ExportFile{}
	)
	switch format {
	case FormatPDF:
		body, err = s.pdf.Render(dataset, "")
		file.ContentType = s.pdf.ContentType()
	default:
		body, err = s.csv.Render(dataset)
		file.ContentType = s.csv.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	file.Filename = base + "." + format
	file.Body = body

	s.logger.Info("roster exported",
		zap.String("offering", key.String()),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("bytes", len(body)),
	)
	return file, nil
}

func rosterDataset(info models.OfferingInfo, assignments []models.SeatAssignment) export.Dataset {
	sortAssignments(assignments)
	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		row := map[string]string{
			"ID":             strconv.FormatInt(a.ID, 10),
			"Identification": a.Identification,
			"Segment":        string(a.Segment),
			"Priority":       strconv.Itoa(a.Priority),
			"Final Score":    strconv.FormatFloat(a.FinalScore, 'f', 2, 64),
			"State":          string(a.State),
			"Assigned At":    a.AssignedAt.Format(time.RFC3339),
		}
		if a.ConfirmedAt != nil {
			row["Confirmed At"] = a.ConfirmedAt.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s - %s", info.ProgramName, info.SiteName),
		Headers: rosterHeaders,
		Rows:    rows,
	}
}

func sortAssignments(as []models.SeatAssignment) {
	sort.SliceStable(as, func(i, j int) bool { return rosterLess(as[i], as[j]) })
}

func rosterLess(a, b models.SeatAssignment) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	return a.ID < b.ID
}
