package models

import "time"

// Attachment maps a submission to one externally stored binary object.
// Rows are created at submission time and never mutated.
type Attachment struct {
	ID             string         `db:"id" json:"id"`
	SubmissionID   string         `db:"submission_id" json:"submission_id"`
	SubmissionType SubmissionType `db:"submission_type" json:"submission_type"`
	Filename       string         `db:"filename" json:"filename"`
	URL            string         `db:"url" json:"url"`
	StoragePath    string         `db:"storage_path" json:"-"`
	FileSize       int64          `db:"file_size" json:"file_size"`
	UploadedAt     time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// AttachmentLink is a short-lived signed download grant for one attachment.
type AttachmentLink struct {
	AttachmentID string    `json:"attachment_id"`
	Filename     string    `json:"filename"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachmentUpload carries one file handed to the object-storage collaborator.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadFailure reports a single file the storage collaborator could not take.
type UploadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}
