package models

// MessSubmissionRequest carries a mess waste form payload. Declared totals are
// optional client-side previews; stored totals are always recomputed.
type MessSubmissionRequest struct {
	SubmissionDate string `json:"submission_date" validate:"required"`
	Hostel         string `json:"hostel" validate:"required"`
	MessWasteFields
	DeclaredTotalStudents *int     `json:"declared_total_students,omitempty"`
	DeclaredTotalWaste    *float64 `json:"declared_total_waste,omitempty"`
	Remarks               string   `json:"remarks"`

	Attachments []AttachmentUpload `json:"-"`
}

// HostelSubmissionRequest carries a hostel waste form payload.
type HostelSubmissionRequest struct {
	SubmissionDate string `json:"submission_date" validate:"required"`
	Hostel         string `json:"hostel" validate:"required"`
	HostelWasteFields
	DeclaredTotalWaste *float64 `json:"declared_total_waste,omitempty"`
	Remarks            string   `json:"remarks"`

	Attachments []AttachmentUpload `json:"-"`
}

// SubmissionResult reports the stored submission and any attachment failures.
type SubmissionResult struct {
	SubmissionID   string           `json:"submission_id"`
	Status         SubmissionStatus `json:"status"`
	TotalStudents  int              `json:"total_students,omitempty"`
	Total          float64          `json:"total"`
	Attachments    []Attachment     `json:"attachments,omitempty"`
	UploadFailures []UploadFailure  `json:"upload_failures,omitempty"`
}

// MessEditFields carries a verifier's corrections. Nil fields keep the stored
// value; only non-nil fields are merged over the submission.
type MessEditFields struct {
	BreakfastStudents       *int     `json:"breakfast_students" validate:"omitempty,min=0"`
	BreakfastStudentWaste   *float64 `json:"breakfast_student_waste" validate:"omitempty,min=0"`
	BreakfastCounterWaste   *float64 `json:"breakfast_counter_waste" validate:"omitempty,min=0"`
	BreakfastVegetablePeels *float64 `json:"breakfast_vegetable_peels" validate:"omitempty,min=0"`
	LunchStudents           *int     `json:"lunch_students" validate:"omitempty,min=0"`
	LunchStudentWaste       *float64 `json:"lunch_student_waste" validate:"omitempty,min=0"`
	LunchCounterWaste       *float64 `json:"lunch_counter_waste" validate:"omitempty,min=0"`
	LunchVegetablePeels     *float64 `json:"lunch_vegetable_peels" validate:"omitempty,min=0"`
	SnacksStudents          *int     `json:"snacks_students" validate:"omitempty,min=0"`
	SnacksStudentWaste      *float64 `json:"snacks_student_waste" validate:"omitempty,min=0"`
	SnacksCounterWaste      *float64 `json:"snacks_counter_waste" validate:"omitempty,min=0"`
	SnacksVegetablePeels    *float64 `json:"snacks_vegetable_peels" validate:"omitempty,min=0"`
	DinnerStudents          *int     `json:"dinner_students" validate:"omitempty,min=0"`
	DinnerStudentWaste      *float64 `json:"dinner_student_waste" validate:"omitempty,min=0"`
	DinnerCounterWaste      *float64 `json:"dinner_counter_waste" validate:"omitempty,min=0"`
	DinnerVegetablePeels    *float64 `json:"dinner_vegetable_peels" validate:"omitempty,min=0"`
	MessDryWaste            *float64 `json:"mess_dry_waste" validate:"omitempty,min=0"`
}

// ApplyTo merges the non-nil corrections over the stored fields.
func (e MessEditFields) ApplyTo(f MessWasteFields) MessWasteFields {
	if e.BreakfastStudents != nil {
		f.BreakfastStudents = *e.BreakfastStudents
	}
	if e.BreakfastStudentWaste != nil {
		f.BreakfastStudentWaste = *e.BreakfastStudentWaste
	}
	if e.BreakfastCounterWaste != nil {
		f.BreakfastCounterWaste = *e.BreakfastCounterWaste
	}
	if e.BreakfastVegetablePeels != nil {
		f.BreakfastVegetablePeels = *e.BreakfastVegetablePeels
	}
	if e.LunchStudents != nil {
		f.LunchStudents = *e.LunchStudents
	}
	if e.LunchStudentWaste != nil {
		f.LunchStudentWaste = *e.LunchStudentWaste
	}
	if e.LunchCounterWaste != nil {
		f.LunchCounterWaste = *e.LunchCounterWaste
	}
	if e.LunchVegetablePeels != nil {
		f.LunchVegetablePeels = *e.LunchVegetablePeels
	}
	if e.SnacksStudents != nil {
		f.SnacksStudents = *e.SnacksStudents
	}
	if e.SnacksStudentWaste != nil {
		f.SnacksStudentWaste = *e.SnacksStudentWaste
	}
	if e.SnacksCounterWaste != nil {
		f.SnacksCounterWaste = *e.SnacksCounterWaste
	}
	if e.SnacksVegetablePeels != nil {
		f.SnacksVegetablePeels = *e.SnacksVegetablePeels
	}
	if e.DinnerStudents != nil {
		f.DinnerStudents = *e.DinnerStudents
	}
	if e.DinnerStudentWaste != nil {
		f.DinnerStudentWaste = *e.DinnerStudentWaste
	}
	if e.DinnerCounterWaste != nil {
		f.DinnerCounterWaste = *e.DinnerCounterWaste
	}
	if e.DinnerVegetablePeels != nil {
		f.DinnerVegetablePeels = *e.DinnerVegetablePeels
	}
	if e.MessDryWaste != nil {
		f.MessDryWaste = *e.MessDryWaste
	}
	return f
}

// HostelEditFields carries a verifier's corrections for a hostel submission.
type HostelEditFields struct {
	DryWaste        *float64 `json:"dry_waste" validate:"omitempty,min=0"`
	WetWaste        *float64 `json:"wet_waste" validate:"omitempty,min=0"`
	EWaste          *float64 `json:"e_waste" validate:"omitempty,min=0"`
	BiomedicalWaste *float64 `json:"biomedical_waste" validate:"omitempty,min=0"`
	HazardousWaste  *float64 `json:"hazardous_waste" validate:"omitempty,min=0"`
}

// ApplyTo merges the non-nil corrections over the stored fields.
func (e HostelEditFields) ApplyTo(f HostelWasteFields) HostelWasteFields {
	if e.DryWaste != nil {
		f.DryWaste = *e.DryWaste
	}
	if e.WetWaste != nil {
		f.WetWaste = *e.WetWaste
	}
	if e.EWaste != nil {
		f.EWaste = *e.EWaste
	}
	if e.BiomedicalWaste != nil {
		f.BiomedicalWaste = *e.BiomedicalWaste
	}
	if e.HazardousWaste != nil {
		f.HazardousWaste = *e.HazardousWaste
	}
	return f
}

// MessEditRequest holds the corrections a verifier approves with.
type MessEditRequest struct {
	MessEditFields
	Reason string `json:"reason" validate:"required"`
}

// HostelEditRequest holds the corrections a verifier approves with.
type HostelEditRequest struct {
	HostelEditFields
	Reason string `json:"reason" validate:"required"`
}

// VerificationOutcome reports one submission's fate in a bulk decision.
type VerificationOutcome struct {
	SubmissionID string `json:"submission_id"`
	Approved     bool   `json:"approved"`
	Error        string `json:"error,omitempty"`
}

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Password string   `json:"password" validate:"required,min=8"`
	FullName string   `json:"full_name" validate:"required"`
	Role     UserRole `json:"role" validate:"required"`
}
