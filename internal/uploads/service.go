package uploads

import "context"

type Service struct {
	Repo *Repo
}

// Enqueue records a new upload job for an item's inline image and returns its
// id. Payloads that are not image data URLs are dropped silently (empty id, nil
// error) so a bad capture never fails the caller's invoice write. When an active
// job already covers the same item and kind, the existing id is returned
// instead of inserting a duplicate.
//
// The dedup check is read-then-insert with no unique constraint behind it; two
// concurrent enqueues for the same item and kind can still both insert.
func (s *Service) Enqueue(ctx context.Context, invoiceCode string, itemID uint64, itemIndex int, kind Kind, payload string) (string, error) {
	if !validDataURL(payload) {
		return "", nil
	}

	active, err := s.Repo.ActiveJob(ctx, invoiceCode, itemID, itemIndex, kind)
	if err != nil {
		return "", err
	}
	if active != nil {
		return active.ID, nil
	}

	job := UploadJob{
		InvoiceCode:     invoiceCode,
		TargetItemID:    itemID,
		TargetItemIndex: itemIndex,
		Kind:            kind,
		Status:          StatusQueued,
		SourcePayload:   payload,
	}
	if err := s.Repo.Create(ctx, &job); err != nil {
		return "", err
	}
	return job.ID, nil
}
