package invoice

import "time"

type Invoice struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`

	CustomerName string  `gorm:"type:text;not null;default:''" json:"customer_name"`
	Total        float64 `gorm:"not null;default:0" json:"total"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceItem is one weighed line on an invoice. ThumbData and ImageData hold
// the captured photos inline until the upload worker moves them to disk and
// fills in the URL fields.
type InvoiceItem struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	InvoiceID uint64 `gorm:"index;not null" json:"invoice_id"`

	Name      string  `gorm:"type:text;not null" json:"name"`
	WeightKg  float64 `gorm:"not null;default:0" json:"weight_kg"`
	UnitPrice float64 `gorm:"not null;default:0" json:"unit_price"`
	Subtotal  float64 `gorm:"not null;default:0" json:"subtotal"`

	ThumbData string `gorm:"type:text" json:"-"`
	ImageData string `gorm:"type:text" json:"-"`
	ThumbURL  string `gorm:"type:text" json:"thumb_url"`
	ImageURL  string `gorm:"type:text" json:"image_url"`
}
