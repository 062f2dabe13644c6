package uploads

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"fruitpos/internal/storage"
)

// ItemImageWriter is the narrow slice of the invoice store the processor needs:
// writing a stored image URL back onto the owning line item.
type ItemImageWriter interface {
	SetItemImage(ctx context.Context, itemID uint64, kind Kind, url string) error
}

type Processor struct {
	Repo  *Repo
	Store *storage.LocalStore
	Items ItemImageWriter
	Log   *zap.Logger

	onProgress func(jobID string, pct int) // test hook
}

// Process runs one claimed job to a terminal state. Every failure is recorded
// on the row itself and mirrored in the returned error so the caller can log
// it; nil means the image reached disk.
func (p *Processor) Process(ctx context.Context, id string) error {
	job, err := p.Repo.ByID(ctx, id)
	if err != nil {
		// The claimed row vanished between claim and processing.
		return p.fail(ctx, id, "Job not found")
	}

	subtype, b64, ok := parseDataURL(job.SourcePayload)
	if !ok {
		return p.fail(ctx, id, "Invalid data url")
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return p.fail(ctx, id, "decode image payload: "+err.Error())
	}

	name := targetFilename(job, fileExt(subtype))
	url, err := p.Store.Save(ctx, name, raw, func(written, total int) {
		pct := written * 100 / total
		if pct > 99 {
			pct = 99 // 100 is reserved for the closed file
		}
		// Progress is cosmetic; a failed update must not abort the upload.
		_ = p.Repo.SetProgress(ctx, id, pct)
		if p.onProgress != nil {
			p.onProgress(id, pct)
		}
	})
	if err != nil {
		return p.fail(ctx, id, "write image file: "+err.Error())
	}

	if err := p.Repo.MarkSuccess(ctx, id, url); err != nil {
		return p.fail(ctx, id, "record success: "+err.Error())
	}
	if p.onProgress != nil {
		p.onProgress(id, 100)
	}

	// Best effort: the job stays successful even if the item write fails.
	if job.TargetItemID != 0 && p.Items != nil {
		if err := p.Items.SetItemImage(ctx, job.TargetItemID, job.Kind, url); err != nil {
			p.Log.Warn("item image reference update failed",
				zap.String("job_id", id),
				zap.Uint64("item_id", job.TargetItemID),
				zap.Error(err))
		}
	}
	return nil
}

func (p *Processor) fail(ctx context.Context, id, msg string) error {
	if err := p.Repo.MarkError(ctx, id, msg); err != nil {
		p.Log.Error("mark upload job error failed",
			zap.String("job_id", id),
			zap.Error(err))
	}
	return errors.New(msg)
}

// targetFilename is deterministic per (invoice, item, kind) so a retried upload
// overwrites the previous file instead of leaking a new one.
func targetFilename(job *UploadJob, ext string) string {
	ref := strconv.FormatUint(job.TargetItemID, 10)
	if job.TargetItemID == 0 {
		ref = "i" + strconv.Itoa(job.TargetItemIndex)
	}
	return fmt.Sprintf("inv_%s_%s_%s.%s", job.InvoiceCode, ref, job.Kind, ext)
}
