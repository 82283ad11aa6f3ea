package types

import "time"

// Document is a supporting file attached to a claim. The metadata row
// lives in the database; the file content is held encrypted in the blob
// store, addressed by the document ID. Documents are immutable after
// creation and are removed together with their claim.
type Document struct {
	// ID is the unique identifier of the document and the address of
	// its blob.
	ID int `json:"id" db:"id"`

	// ClaimID references the claim that owns the document.
	ClaimID int `json:"claim_id" db:"claim_id"`

	// FileName is the original name of the uploaded file.
	FileName string `json:"file_name" db:"file_name"`

	// UploadDate is when the document was stored.
	UploadDate time.Time `json:"upload_date" db:"upload_date"`

	// FileType is the lowercased file extension, restricted to the
	// upload allow-list.
	FileType string `json:"file_type" db:"file_type"`

	// FileSize is the plaintext size in bytes.
	FileSize int64 `json:"file_size" db:"file_size"`
}
