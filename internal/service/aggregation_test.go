package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greencampus/waste-portal-api/internal/models"
)

func TestComputeMessAggregateTotals(t *testing.T) {
	fields := models.MessWasteFields{
		BreakfastStudents:       20,
		BreakfastStudentWaste:   1.0,
		BreakfastCounterWaste:   0.5,
		BreakfastVegetablePeels: 0.5,
		LunchStudents:           30,
		LunchStudentWaste:       1.5,
		LunchCounterWaste:       0.5,
		MessDryWaste:            0.5,
	}

	agg := ComputeMessAggregate(fields)

	assert.Equal(t, 50, agg.TotalStudents)
	assert.InDelta(t, 4.5, agg.TotalMessWaste, 1e-9)
	assert.InDelta(t, 4.0, agg.TotalMessWasteNoPeels, 1e-9)
	assert.InDelta(t, 0.09, agg.PerCapitaMessWaste, 1e-9)
	assert.InDelta(t, 0.08, agg.PerCapitaMessWasteNoPeels, 1e-9)
}

func TestComputeMessAggregateZeroStudents(t *testing.T) {
	fields := models.MessWasteFields{
		BreakfastStudentWaste: 2.0,
		MessDryWaste:          1.0,
	}

	agg := ComputeMessAggregate(fields)

	assert.Zero(t, agg.TotalStudents)
	assert.InDelta(t, 3.0, agg.TotalMessWaste, 1e-9)
	assert.Zero(t, agg.PerCapitaMessWaste)
	assert.Zero(t, agg.PerCapitaMessWasteNoPeels)
}

func TestComputeMessAggregateAllZero(t *testing.T) {
	agg := ComputeMessAggregate(models.MessWasteFields{})

	assert.Zero(t, agg.TotalMessWaste)
	assert.Zero(t, agg.TotalMessWasteNoPeels)
	assert.Zero(t, agg.PerCapitaMessWaste)
}

func TestComputeHostelAggregateTotal(t *testing.T) {
	agg := ComputeHostelAggregate(models.HostelWasteFields{
		DryWaste:        10,
		WetWaste:        20,
		EWaste:          0.5,
		BiomedicalWaste: 0.25,
		HazardousWaste:  0.25,
	})

	assert.InDelta(t, 31.0, agg.TotalHostelWaste, 1e-9)
	assert.Equal(t, 10.0, agg.DryWaste)
}
