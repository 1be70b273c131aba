package models

import (
	"encoding/json"
	"time"
)

// EditRecord is an append-only snapshot of a verifier-made change. OriginalData
// holds the submission's component fields exactly as submitted, EditedData the
// fields as approved. Rows are never updated after insert.
type EditRecord struct {
	ID             string          `db:"id" json:"id"`
	SubmissionID   string          `db:"submission_id" json:"submission_id"`
	SubmissionType SubmissionType  `db:"submission_type" json:"submission_type"`
	OriginalData   json.RawMessage `db:"original_data" json:"original_data"`
	EditedData     json.RawMessage `db:"edited_data" json:"edited_data"`
	EditedBy       string          `db:"edited_by" json:"edited_by"`
	EditedAt       time.Time       `db:"edited_at" json:"edited_at"`
	Reason         string          `db:"edit_reason" json:"edit_reason"`
}

// EditRecordDetail joins an edit record with its submission's hostel and date
// for the audit history view.
type EditRecordDetail struct {
	EditRecord
	Hostel         *string    `db:"hostel" json:"hostel,omitempty"`
	SubmissionDate *time.Time `db:"submission_date" json:"submission_date,omitempty"`
}
