package uploads

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

type Kind string

const (
	KindThumb Kind = "thumb"
	KindFull  Kind = "full"
)

// UploadJob moves one captured item photo from its inline data URL in the
// database out to a file on disk. Rows are never deleted; terminal jobs stay
// around for the operator screens.
type UploadJob struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	InvoiceCode string `gorm:"type:varchar(32);index;not null" json:"invoice_code"`

	// TargetItemID is zero while the line item is not linked yet;
	// TargetItemIndex is the ordinal fallback used for naming and dedup then.
	TargetItemID    uint64 `gorm:"index" json:"target_item_id"`
	TargetItemIndex int    `json:"target_item_index"`

	Kind   Kind   `gorm:"type:varchar(8);not null" json:"kind"` // thumb/full
	Status Status `gorm:"type:varchar(16);index;not null;default:'queued'" json:"status"`

	Progress int `gorm:"not null;default:0" json:"progress"`

	// SourcePayload is the inline data URL. Kept after failures so retry works.
	SourcePayload  string  `gorm:"type:text;not null" json:"-"`
	StoredLocation *string `gorm:"type:text" json:"stored_location"`

	Attempts  int     `gorm:"not null;default:0" json:"attempts"`
	LastError *string `gorm:"type:text" json:"last_error"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
