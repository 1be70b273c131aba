package models

import "time"

// MessAggregateGroup carries the mess-derived columns of a master row.
type MessAggregateGroup struct {
	TotalStudents              int     `db:"total_students" json:"total_students"`
	BreakfastStudentWaste      float64 `db:"breakfast_student_waste" json:"breakfast_student_waste"`
	BreakfastCounterWaste      float64 `db:"breakfast_counter_waste" json:"breakfast_counter_waste"`
	BreakfastVegetablePeels    float64 `db:"breakfast_vegetable_peels" json:"breakfast_vegetable_peels"`
	LunchStudentWaste          float64 `db:"lunch_student_waste" json:"lunch_student_waste"`
	LunchCounterWaste          float64 `db:"lunch_counter_waste" json:"lunch_counter_waste"`
	LunchVegetablePeels        float64 `db:"lunch_vegetable_peels" json:"lunch_vegetable_peels"`
	SnacksStudentWaste         float64 `db:"snacks_student_waste" json:"snacks_student_waste"`
	SnacksCounterWaste         float64 `db:"snacks_counter_waste" json:"snacks_counter_waste"`
	SnacksVegetablePeels       float64 `db:"snacks_vegetable_peels" json:"snacks_vegetable_peels"`
	DinnerStudentWaste         float64 `db:"dinner_student_waste" json:"dinner_student_waste"`
	DinnerCounterWaste         float64 `db:"dinner_counter_waste" json:"dinner_counter_waste"`
	DinnerVegetablePeels       float64 `db:"dinner_vegetable_peels" json:"dinner_vegetable_peels"`
	MessDryWaste               float64 `db:"mess_dry_waste" json:"mess_dry_waste"`
	TotalMessWaste             float64 `db:"total_mess_waste" json:"total_mess_waste"`
	TotalMessWasteNoPeels      float64 `db:"total_mess_waste_no_peels" json:"total_mess_waste_no_peels"`
	PerCapitaMessWaste         float64 `db:"per_capita_mess_waste" json:"per_capita_mess_waste"`
	PerCapitaMessWasteNoPeels  float64 `db:"per_capita_mess_waste_no_peels" json:"per_capita_mess_waste_no_peels"`
}

// HostelAggregateGroup carries the hostel-derived columns of a master row.
type HostelAggregateGroup struct {
	DryWaste         float64 `db:"dry_waste" json:"dry_waste"`
	WetWaste         float64 `db:"wet_waste" json:"wet_waste"`
	EWaste           float64 `db:"e_waste" json:"e_waste"`
	BiomedicalWaste  float64 `db:"biomedical_waste" json:"biomedical_waste"`
	HazardousWaste   float64 `db:"hazardous_waste" json:"hazardous_waste"`
	TotalHostelWaste float64 `db:"total_hostel_waste" json:"total_hostel_waste"`
}

// MasterWasteRecord is the per-(date, hostel) aggregate row. The mess and hostel
// groups arrive independently; whichever approval lands first creates the row
// with the other group at zero.
type MasterWasteRecord struct {
	ID     int64     `db:"id" json:"-"`
	Date   time.Time `db:"date" json:"date"`
	Hostel string    `db:"hostel" json:"hostel"`
	MessAggregateGroup
	HostelAggregateGroup
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReportPeriod selects a rolling window over the master data.
type ReportPeriod string

const (
	PeriodWeek    ReportPeriod = "week"
	PeriodMonth   ReportPeriod = "month"
	PeriodYear    ReportPeriod = "year"
	PeriodAllTime ReportPeriod = "all_time"
)

// Valid reports whether the period is one of the known windows.
func (p ReportPeriod) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return true
	}
	return false
}

// MasterDataFilter narrows master-data reads for reporting.
type MasterDataFilter struct {
	Hostel   string
	Period   ReportPeriod
	DateFrom *time.Time
	DateTo   *time.Time
}

// KPISummary is the reporting dashboard headline block.
type KPISummary struct {
	TotalWaste                float64 `json:"total_waste"`
	TotalMessWaste            float64 `json:"total_mess_waste"`
	TotalHostelWaste          float64 `json:"total_hostel_waste"`
	PerCapitaMessWaste        float64 `json:"per_capita_mess_waste"`
	PerCapitaMessWasteNoPeels float64 `json:"per_capita_mess_waste_no_peels"`
	TotalWasteToday           float64 `json:"total_waste_today"`
	TotalMessWasteToday       float64 `json:"total_mess_waste_today"`
	PerCapitaMessWasteToday   float64 `json:"per_capita_mess_waste_today"`
}
