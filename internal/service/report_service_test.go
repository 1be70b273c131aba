package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencampus/waste-portal-api/internal/models"
	"github.com/greencampus/waste-portal-api/pkg/export"
)

type masterReaderStub struct {
	rows       []models.MasterWasteRecord
	hostels    []string
	lastFilter models.MasterDataFilter
}

func (s *masterReaderStub) List(ctx context.Context, filter models.MasterDataFilter) ([]models.MasterWasteRecord, error) {
	s.lastFilter = filter
	return s.rows, nil
}

func (s *masterReaderStub) Hostels(ctx context.Context) ([]string, error) {
	return s.hostels, nil
}

func sampleMasterRows() []models.MasterWasteRecord {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return []models.MasterWasteRecord{
		{
			Date:   today,
			Hostel: "H1",
			MessAggregateGroup: models.MessAggregateGroup{
				TotalStudents:         50,
				TotalMessWaste:        4.5,
				TotalMessWasteNoPeels: 4.0,
			},
			HostelAggregateGroup: models.HostelAggregateGroup{TotalHostelWaste: 30.5},
		},
		{
			Date:   today.AddDate(0, 0, -1),
			Hostel: "H1",
			MessAggregateGroup: models.MessAggregateGroup{
				TotalStudents:         50,
				TotalMessWaste:        5.5,
				TotalMessWasteNoPeels: 5.0,
			},
			HostelAggregateGroup: models.HostelAggregateGroup{TotalHostelWaste: 9.5},
		},
	}
}

func newReportFixture(repo *masterReaderStub) *ReportService {
	return NewReportService(repo, nil, export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestReportServiceKPIs(t *testing.T) {
	repo := &masterReaderStub{rows: sampleMasterRows()}
	svc := newReportFixture(repo)

	kpis, err := svc.KPIs(context.Background(), models.MasterDataFilter{Period: models.PeriodWeek})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, kpis.TotalMessWaste, 1e-9)
	assert.InDelta(t, 40.0, kpis.TotalHostelWaste, 1e-9)
	assert.InDelta(t, 50.0, kpis.TotalWaste, 1e-9)
	assert.InDelta(t, 0.1, kpis.PerCapitaMessWaste, 1e-9)
	assert.InDelta(t, 0.09, kpis.PerCapitaMessWasteNoPeels, 1e-9)
	assert.InDelta(t, 35.0, kpis.TotalWasteToday, 1e-9)
	assert.InDelta(t, 0.09, kpis.PerCapitaMessWasteToday, 1e-9)
}

func TestReportServiceKPIsEmptyWindow(t *testing.T) {
	svc := newReportFixture(&masterReaderStub{})

	kpis, err := svc.KPIs(context.Background(), models.MasterDataFilter{Period: models.PeriodMonth})
	require.NoError(t, err)
	assert.Zero(t, kpis.TotalWaste)
	assert.Zero(t, kpis.PerCapitaMessWaste)
}

func TestReportServicePeriodResolvesToRollingWindow(t *testing.T) {
	repo := &masterReaderStub{}
	svc := newReportFixture(repo)

	_, err := svc.MasterData(context.Background(), models.MasterDataFilter{Period: models.PeriodWeek})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.DateFrom)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -7), *repo.lastFilter.DateFrom, 25*time.Hour)

	_, err = svc.MasterData(context.Background(), models.MasterDataFilter{Period: models.PeriodAllTime})
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.DateFrom)
}

func TestReportServiceExplicitBoundsWinOverPeriod(t *testing.T) {
	repo := &masterReaderStub{}
	svc := newReportFixture(repo)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.MasterData(context.Background(), models.MasterDataFilter{Period: models.PeriodWeek, DateFrom: &from})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.DateFrom)
	assert.Equal(t, from, *repo.lastFilter.DateFrom)
}

func TestReportServiceExportCSV(t *testing.T) {
	repo := &masterReaderStub{rows: sampleMasterRows()}
	svc := newReportFixture(repo)

	payload, err := svc.ExportCSV(context.Background(), models.MasterDataFilter{})
	require.NoError(t, err)

	text := string(payload)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Mess Waste (kg)")
	assert.Contains(t, lines[1], "H1")
	assert.Contains(t, lines[1], "4.50")
	assert.Contains(t, lines[1], "35.00")
}

func TestReportServiceExportPDF(t *testing.T) {
	repo := &masterReaderStub{rows: sampleMasterRows()}
	svc := newReportFixture(repo)

	payload, err := svc.ExportPDF(context.Background(), models.MasterDataFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestReportServiceHostels(t *testing.T) {
	svc := newReportFixture(&masterReaderStub{hostels: []string{"H1", "H2"}})

	hostels, err := svc.Hostels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2"}, hostels)
}
