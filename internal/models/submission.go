package models

import "time"

// SubmissionStatus drives the verification workflow.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusVerified SubmissionStatus = "verified"
	StatusRejected SubmissionStatus = "rejected"
)

// SubmissionType tags which variant a submission id refers to.
type SubmissionType string

const (
	TypeMessWaste   SubmissionType = "mess_waste"
	TypeHostelWaste SubmissionType = "hostel_waste"
)

// Valid reports whether the type is one of the known variants.
func (t SubmissionType) Valid() bool {
	return t == TypeMessWaste || t == TypeHostelWaste
}

// MessWasteFields holds the per-meal measurement columns of a mess submission.
// Every field defaults to zero; there are no optional measurements.
type MessWasteFields struct {
	BreakfastStudents       int     `db:"breakfast_students" json:"breakfast_students" validate:"min=0"`
	BreakfastStudentWaste   float64 `db:"breakfast_student_waste" json:"breakfast_student_waste" validate:"min=0"`
	BreakfastCounterWaste   float64 `db:"breakfast_counter_waste" json:"breakfast_counter_waste" validate:"min=0"`
	BreakfastVegetablePeels float64 `db:"breakfast_vegetable_peels" json:"breakfast_vegetable_peels" validate:"min=0"`
	LunchStudents           int     `db:"lunch_students" json:"lunch_students" validate:"min=0"`
	LunchStudentWaste       float64 `db:"lunch_student_waste" json:"lunch_student_waste" validate:"min=0"`
	LunchCounterWaste       float64 `db:"lunch_counter_waste" json:"lunch_counter_waste" validate:"min=0"`
	LunchVegetablePeels     float64 `db:"lunch_vegetable_peels" json:"lunch_vegetable_peels" validate:"min=0"`
	SnacksStudents          int     `db:"snacks_students" json:"snacks_students" validate:"min=0"`
	SnacksStudentWaste      float64 `db:"snacks_student_waste" json:"snacks_student_waste" validate:"min=0"`
	SnacksCounterWaste      float64 `db:"snacks_counter_waste" json:"snacks_counter_waste" validate:"min=0"`
	SnacksVegetablePeels    float64 `db:"snacks_vegetable_peels" json:"snacks_vegetable_peels" validate:"min=0"`
	DinnerStudents          int     `db:"dinner_students" json:"dinner_students" validate:"min=0"`
	DinnerStudentWaste      float64 `db:"dinner_student_waste" json:"dinner_student_waste" validate:"min=0"`
	DinnerCounterWaste      float64 `db:"dinner_counter_waste" json:"dinner_counter_waste" validate:"min=0"`
	DinnerVegetablePeels    float64 `db:"dinner_vegetable_peels" json:"dinner_vegetable_peels" validate:"min=0"`
	MessDryWaste            float64 `db:"mess_dry_waste" json:"mess_dry_waste" validate:"min=0"`
}

// HostelWasteFields holds the waste-category columns of a hostel submission.
type HostelWasteFields struct {
	DryWaste        float64 `db:"dry_waste" json:"dry_waste" validate:"min=0"`
	WetWaste        float64 `db:"wet_waste" json:"wet_waste" validate:"min=0"`
	EWaste          float64 `db:"e_waste" json:"e_waste" validate:"min=0"`
	BiomedicalWaste float64 `db:"biomedical_waste" json:"biomedical_waste" validate:"min=0"`
	HazardousWaste  float64 `db:"hazardous_waste" json:"hazardous_waste" validate:"min=0"`
}

// MessWasteSubmission is a raw per-event mess record awaiting verification.
type MessWasteSubmission struct {
	ID             int64            `db:"id" json:"-"`
	SubmissionID   string           `db:"submission_id" json:"submission_id"`
	SubmissionDate time.Time        `db:"submission_date" json:"submission_date"`
	Hostel         string           `db:"hostel" json:"hostel"`
	MessWasteFields
	TotalStudents  int              `db:"total_students" json:"total_students"`
	TotalMessWaste float64          `db:"total_mess_waste" json:"total_mess_waste"`
	Remarks        string           `db:"remarks" json:"remarks"`
	SubmittedBy    string           `db:"submitted_by" json:"submitted_by"`
	SubmittedAt    time.Time        `db:"submitted_at" json:"submitted_at"`
	Status         SubmissionStatus `db:"status" json:"status"`
	VerifiedBy     *string          `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt     *time.Time       `db:"verified_at" json:"verified_at,omitempty"`
}

// HostelWasteSubmission is a raw per-event hostel record awaiting verification.
type HostelWasteSubmission struct {
	ID             int64            `db:"id" json:"-"`
	SubmissionID   string           `db:"submission_id" json:"submission_id"`
	SubmissionDate time.Time        `db:"submission_date" json:"submission_date"`
	Hostel         string           `db:"hostel" json:"hostel"`
	HostelWasteFields
	TotalWaste     float64          `db:"total_waste" json:"total_waste"`
	Remarks        string           `db:"remarks" json:"remarks"`
	SubmittedBy    string           `db:"submitted_by" json:"submitted_by"`
	SubmittedAt    time.Time        `db:"submitted_at" json:"submitted_at"`
	Status         SubmissionStatus `db:"status" json:"status"`
	VerifiedBy     *string          `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt     *time.Time       `db:"verified_at" json:"verified_at,omitempty"`
}

// SubmissionFilter narrows submission listings for the verifier queue.
type SubmissionFilter struct {
	Status      *SubmissionStatus
	Hostel      string
	SubmittedBy string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// PendingGroup bundles pending submissions sharing a (hostel, date, variant) key,
// mirroring how verifiers review collections together.
type PendingGroup struct {
	Hostel         string           `json:"hostel"`
	SubmissionDate time.Time        `json:"submission_date"`
	Type           SubmissionType   `json:"type"`
	SubmissionIDs  []string         `json:"submission_ids"`
	Count          int              `json:"count"`
}
