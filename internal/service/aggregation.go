package service

import "github.com/greencampus/waste-portal-api/internal/models"

// ComputeMessAggregate derives every stored mess total from the component
// fields. Per-capita values fall back to zero when no students were counted.
func ComputeMessAggregate(f models.MessWasteFields) models.MessAggregateGroup {
	totalStudents := f.BreakfastStudents + f.LunchStudents + f.SnacksStudents + f.DinnerStudents

	total := f.BreakfastStudentWaste + f.BreakfastCounterWaste + f.BreakfastVegetablePeels +
		f.LunchStudentWaste + f.LunchCounterWaste + f.LunchVegetablePeels +
		f.SnacksStudentWaste + f.SnacksCounterWaste + f.SnacksVegetablePeels +
		f.DinnerStudentWaste + f.DinnerCounterWaste + f.DinnerVegetablePeels +
		f.MessDryWaste

	totalNoPeels := total - f.BreakfastVegetablePeels - f.LunchVegetablePeels -
		f.SnacksVegetablePeels - f.DinnerVegetablePeels

	var perCapita, perCapitaNoPeels float64
	if totalStudents > 0 {
		perCapita = total / float64(totalStudents)
		perCapitaNoPeels = totalNoPeels / float64(totalStudents)
	}

	return models.MessAggregateGroup{
		TotalStudents:             totalStudents,
		BreakfastStudentWaste:     f.BreakfastStudentWaste,
		BreakfastCounterWaste:     f.BreakfastCounterWaste,
		BreakfastVegetablePeels:   f.BreakfastVegetablePeels,
		LunchStudentWaste:         f.LunchStudentWaste,
		LunchCounterWaste:         f.LunchCounterWaste,
		LunchVegetablePeels:       f.LunchVegetablePeels,
		SnacksStudentWaste:        f.SnacksStudentWaste,
		SnacksCounterWaste:        f.SnacksCounterWaste,
		SnacksVegetablePeels:      f.SnacksVegetablePeels,
		DinnerStudentWaste:        f.DinnerStudentWaste,
		DinnerCounterWaste:        f.DinnerCounterWaste,
		DinnerVegetablePeels:      f.DinnerVegetablePeels,
		MessDryWaste:              f.MessDryWaste,
		TotalMessWaste:            total,
		TotalMessWasteNoPeels:     totalNoPeels,
		PerCapitaMessWaste:        perCapita,
		PerCapitaMessWasteNoPeels: perCapitaNoPeels,
	}
}

// ComputeHostelAggregate derives the hostel total from the category fields.
func ComputeHostelAggregate(f models.HostelWasteFields) models.HostelAggregateGroup {
	return models.HostelAggregateGroup{
		DryWaste:         f.DryWaste,
		WetWaste:         f.WetWaste,
		EWaste:           f.EWaste,
		BiomedicalWaste:  f.BiomedicalWaste,
		HazardousWaste:   f.HazardousWaste,
		TotalHostelWaste: f.DryWaste + f.WetWaste + f.EWaste + f.BiomedicalWaste + f.HazardousWaste,
	}
}
