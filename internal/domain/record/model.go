package record

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_record table. A signed record is
// frozen: its content and attachments no longer change.
type MedicalRecord struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	AuthorID  uuid.UUID  `db:"author_id" json:"author_id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Signed    bool       `db:"signed" json:"signed"`
	SignedBy  *uuid.UUID `db:"signed_by" json:"signed_by,omitempty"`
	SignedAt  *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Attachment maps to the record_attachment table. The binary content lives
// in the blobstore under BlobID.
type Attachment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RecordID    uuid.UUID `db:"record_id" json:"record_id"`
	BlobID      string    `db:"blob_id" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Size        int64     `db:"size" json:"size"`
	Hash        string    `db:"hash" json:"hash"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
