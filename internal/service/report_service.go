package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/export"
)

type masterDataReader interface {
	List(ctx context.Context, filter models.MasterDataFilter) ([]models.MasterWasteRecord, error)
	Hostels(ctx context.Context) ([]string, error)
}

// ReportService serves verified aggregate data: listings, KPI summaries and
// file exports. Reads go through the report cache when it is enabled.
type ReportService struct {
	repo   masterDataReader
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo masterDataReader, cache *CacheService, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, csv: csv, pdf: pdf, logger: logger}
}

// MasterData returns aggregate rows for the filter. Period filters are rolling
// windows anchored at now; explicit date bounds take precedence over a period.
func (s *ReportService) MasterData(ctx context.Context, filter models.MasterDataFilter) ([]models.MasterWasteRecord, error) {
	resolved, cacheable := s.resolveFilter(filter)

	cacheKey := fmt.Sprintf("reports:master:%s:%s", keyPart(filter.Hostel), keyPart(string(filter.Period)))
	if cacheable {
		var cached []models.MasterWasteRecord
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	rows, err := s.repo.List(ctx, resolved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to read master data")
	}

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, rows, 0); err != nil {
			s.logger.Warn("failed to cache master data", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return rows, nil
}

// KPIs computes the dashboard headline numbers over the filtered window.
func (s *ReportService) KPIs(ctx context.Context, filter models.MasterDataFilter) (*models.KPISummary, error) {
	rows, err := s.MasterData(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &models.KPISummary{}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var students, studentsToday int
	var messNoPeels, messToday float64
	for _, row := range rows {
		summary.TotalMessWaste += row.TotalMessWaste
		summary.TotalHostelWaste += row.TotalHostelWaste
		messNoPeels += row.TotalMessWasteNoPeels
		students += row.TotalStudents
		if row.Date.Equal(today) {
			summary.TotalWasteToday += row.TotalMessWaste + row.TotalHostelWaste
			summary.TotalMessWasteToday += row.TotalMessWaste
			messToday += row.TotalMessWaste
			studentsToday += row.TotalStudents
		}
	}
	summary.TotalWaste = summary.TotalMessWaste + summary.TotalHostelWaste
	if students > 0 {
		summary.PerCapitaMessWaste = summary.TotalMessWaste / float64(students)
		summary.PerCapitaMessWasteNoPeels = messNoPeels / float64(students)
	}
	if studentsToday > 0 {
		summary.PerCapitaMessWasteToday = messToday / float64(studentsToday)
	}
	return summary, nil
}

// Hostels returns the hostels present in the master data, for filter dropdowns.
func (s *ReportService) Hostels(ctx context.Context) ([]string, error) {
	hostels, err := s.repo.Hostels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list hostels")
	}
	return hostels, nil
}

// ExportCSV renders the filtered master data as CSV bytes.
func (s *ReportService) ExportCSV(ctx context.Context, filter models.MasterDataFilter) ([]byte, error) {
	dataset, err := s.dataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return payload, nil
}

// ExportPDF renders the filtered master data as a tabular PDF.
func (s *ReportService) ExportPDF(ctx context.Context, filter models.MasterDataFilter) ([]byte, error) {
	dataset, err := s.dataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(dataset, "Waste Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return payload, nil
}

var exportHeaders = []string{
	"Date", "Hostel", "Students",
	"Mess Waste (kg)", "Mess Waste w/o Peels (kg)",
	"Per Capita (kg)", "Per Capita w/o Peels (kg)",
	"Dry (kg)", "Wet (kg)", "E-Waste (kg)", "Biomedical (kg)", "Hazardous (kg)",
	"Hostel Waste (kg)", "Total (kg)",
}

func (s *ReportService) dataset(ctx context.Context, filter models.MasterDataFilter) (export.Dataset, error) {
	rows, err := s.MasterData(ctx, filter)
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":                      row.Date.Format("2006-01-02"),
			"Hostel":                    row.Hostel,
			"Students":                  strconv.Itoa(row.TotalStudents),
			"Mess Waste (kg)":           formatKg(row.TotalMessWaste),
			"Mess Waste w/o Peels (kg)": formatKg(row.TotalMessWasteNoPeels),
			"Per Capita (kg)":           formatKg(row.PerCapitaMessWaste),
			"Per Capita w/o Peels (kg)": formatKg(row.PerCapitaMessWasteNoPeels),
			"Dry (kg)":                  formatKg(row.DryWaste),
			"Wet (kg)":                  formatKg(row.WetWaste),
			"E-Waste (kg)":              formatKg(row.EWaste),
			"Biomedical (kg)":           formatKg(row.BiomedicalWaste),
			"Hazardous (kg)":            formatKg(row.HazardousWaste),
			"Hostel Waste (kg)":         formatKg(row.TotalHostelWaste),
			"Total (kg)":                formatKg(row.TotalMessWaste + row.TotalHostelWaste),
		})
	}
	return dataset, nil
}

// resolveFilter translates a period into concrete date bounds. The result is
// cacheable only when the caller did not supply custom bounds.
func (s *ReportService) resolveFilter(filter models.MasterDataFilter) (models.MasterDataFilter, bool) {
	if filter.DateFrom != nil || filter.DateTo != nil {
		return filter, false
	}
	var window time.Duration
	switch filter.Period {
	case models.PeriodWeek:
		window = 7 * 24 * time.Hour
	case models.PeriodMonth:
		window = 30 * 24 * time.Hour
	case models.PeriodYear:
		window = 365 * 24 * time.Hour
	case models.PeriodAllTime, "":
		return filter, true
	default:
		return filter, false
	}
	from := time.Now().UTC().Add(-window).Truncate(24 * time.Hour)
	filter.DateFrom = &from
	return filter, true
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func keyPart(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
