package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fruitpos/internal/uploads"
)

var ErrNotFound = errors.New("invoice not found")

type Service struct {
	DB      *gorm.DB
	Uploads *uploads.Service
	Log     *zap.Logger
}

type CreateItemInput struct {
	Name      string
	WeightKg  float64
	UnitPrice float64
	ThumbData string
	ImageData string
}

type CreateInvoiceInput struct {
	Code         string
	CustomerName string
	Items        []CreateItemInput
}

// Create persists the invoice with its items, then enqueues an upload job for
// every inline image. Enqueueing happens after the commit: a failed enqueue is
// picked up later by the reconciliation sweep, while a failed invoice write
// must not leave orphan jobs behind.
func (s *Service) Create(ctx context.Context, in CreateInvoiceInput) (*Invoice, error) {
	inv := Invoice{
		Code:         in.Code,
		CustomerName: in.CustomerName,
	}
	for _, it := range in.Items {
		sub := it.WeightKg * it.UnitPrice
		inv.Total += sub
		inv.Items = append(inv.Items, InvoiceItem{
			Name:      it.Name,
			WeightKg:  it.WeightKg,
			UnitPrice: it.UnitPrice,
			Subtotal:  sub,
			ThumbData: it.ThumbData,
			ImageData: it.ImageData,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.Code == "" {
			// Unique placeholder until the row id is known.
			inv.Code = fmt.Sprintf("PENDING-%d", time.Now().UnixNano())
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		if in.Code == "" {
			inv.Code = fmt.Sprintf("INV-%d", inv.ID)
			return tx.Model(&Invoice{}).
				Where("id = ?", inv.ID).
				Update("code", inv.Code).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueItemImages(ctx, &inv)
	return &inv, nil
}

func (s *Service) enqueueItemImages(ctx context.Context, inv *Invoice) {
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ThumbData != "" && it.ThumbURL == "" {
			if _, err := s.Uploads.Enqueue(ctx, inv.Code, it.ID, i, uploads.KindThumb, it.ThumbData); err != nil {
				s.Log.Warn("enqueue thumb upload failed",
					zap.Uint64("item_id", it.ID), zap.Error(err))
			}
		}
		if it.ImageData != "" && it.ImageURL == "" {
			if _, err := s.Uploads.Enqueue(ctx, inv.Code, it.ID, i, uploads.KindFull, it.ImageData); err != nil {
				s.Log.Warn("enqueue full upload failed",
					zap.Uint64("item_id", it.ID), zap.Error(err))
			}
		}
	}
}

func (s *Service) ByCode(ctx context.Context, code string) (*Invoice, error) {
	var inv Invoice
	err := s.DB.WithContext(ctx).Preload("Items").First(&inv, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SetItemImage writes a stored image URL onto the item field matching kind.
// Satisfies uploads.ItemImageWriter.
func (s *Service) SetItemImage(ctx context.Context, itemID uint64, kind uploads.Kind, url string) error {
	col := "image_url"
	if kind == uploads.KindThumb {
		col = "thumb_url"
	}
	res := s.DB.WithContext(ctx).Model(&InvoiceItem{}).
		Where("id = ?", itemID).
		Update(col, url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invoice item %d not found", itemID)
	}
	return nil
}

// SweepPendingImages re-enqueues inline images that never made it to disk:
// items still carrying data with an empty URL, e.g. after a crashed enqueue.
// Dedup in the enqueuer keeps repeat sweeps harmless. Returns how many jobs
// were enqueued or found already active.
func (s *Service) SweepPendingImages(ctx context.Context) (int, error) {
	var rows []struct {
		ItemID    uint64
		Code      string
		ThumbData string
		ImageData string
		ThumbURL  string
		ImageURL  string
	}
	err := s.DB.WithContext(ctx).Model(&InvoiceItem{}).
		Select("invoice_items.id as item_id, invoices.code as code, invoice_items.thumb_data, invoice_items.image_data, invoice_items.thumb_url, invoice_items.image_url").
		Joins("join invoices on invoices.id = invoice_items.invoice_id").
		Where("(invoice_items.thumb_data <> '' AND invoice_items.thumb_url = '') OR (invoice_items.image_data <> '' AND invoice_items.image_url = '')").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	n := 0
	for _, row := range rows {
		if row.ThumbData != "" && row.ThumbURL == "" {
			id, err := s.Uploads.Enqueue(ctx, row.Code, row.ItemID, 0, uploads.KindThumb, row.ThumbData)
			if err != nil {
				return n, err
			}
			if id != "" {
				n++
			}
		}
		if row.ImageData != "" && row.ImageURL == "" {
			id, err := s.Uploads.Enqueue(ctx, row.Code, row.ItemID, 0, uploads.KindFull, row.ImageData)
			if err != nil {
				return n, err
			}
			if id != "" {
				n++
			}
		}
	}
	return n, nil
}
