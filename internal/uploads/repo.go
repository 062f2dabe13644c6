package uploads

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("upload job not found")

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Create(ctx context.Context, job *UploadJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = StatusQueued
	}
	return r.DB.WithContext(ctx).Create(job).Error
}

func (r *Repo) ByID(ctx context.Context, id string) (*UploadJob, error) {
	var job UploadJob
	if err := r.DB.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// List returns jobs newest first, optionally filtered by status.
func (r *Repo) List(ctx context.Context, status Status, page, pageSize int) ([]UploadJob, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	q := r.DB.WithContext(ctx).Model(&UploadJob{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []UploadJob
	err := q.Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		N      int64
	}
	if err := r.DB.WithContext(ctx).Model(&UploadJob{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := map[Status]int64{
		StatusQueued:    0,
		StatusUploading: 0,
		StatusSuccess:   0,
		StatusError:     0,
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// ActiveJob finds a queued or uploading job already covering the same item and
// kind. Dedup keys on the item id when known, else on invoice code + index.
func (r *Repo) ActiveJob(ctx context.Context, invoiceCode string, itemID uint64, itemIndex int, kind Kind) (*UploadJob, error) {
	q := r.DB.WithContext(ctx).
		Where("kind = ? AND status IN ?", kind, []Status{StatusQueued, StatusUploading})
	if itemID != 0 {
		q = q.Where("target_item_id = ?", itemID)
	} else {
		q = q.Where("invoice_code = ? AND target_item_index = ?", invoiceCode, itemIndex)
	}

	var job UploadJob
	err := q.First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ClaimBatch marks up to max queued jobs as uploading, oldest first. Each row is
// taken with a conditional update keyed on the current status, so two drains
// racing over the same set never claim the same job; rows that lose the race are
// left out of the result.
func (r *Repo) ClaimBatch(ctx context.Context, max int) ([]UploadJob, error) {
	var candidates []UploadJob
	err := r.DB.WithContext(ctx).
		Where("status = ?", StatusQueued).
		Order("created_at asc").
		Limit(max).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]UploadJob, 0, len(candidates))
	for _, job := range candidates {
		res := r.DB.WithContext(ctx).Model(&UploadJob{}).
			Where("id = ? AND status = ?", job.ID, StatusQueued).
			Updates(map[string]any{
				"status":   StatusUploading,
				"attempts": gorm.Expr("attempts + 1"),
				"progress": 0,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue // another drain got there first
		}
		job.Status = StatusUploading
		job.Attempts++
		job.Progress = 0
		claimed = append(claimed, job)
	}
	return claimed, nil
}

// SetProgress is best effort; callers ignore its error.
func (r *Repo) SetProgress(ctx context.Context, id string, pct int) error {
	return r.DB.WithContext(ctx).Model(&UploadJob{}).
		Where("id = ?", id).
		Update("progress", pct).Error
}

func (r *Repo) MarkSuccess(ctx context.Context, id string, storedLocation string) error {
	return r.DB.WithContext(ctx).Model(&UploadJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          StatusSuccess,
			"progress":        100,
			"stored_location": storedLocation,
			"last_error":      nil,
		}).Error
}

func (r *Repo) MarkError(ctx context.Context, id string, msg string) error {
	return r.DB.WithContext(ctx).Model(&UploadJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     StatusError,
			"last_error": msg,
		}).Error
}

// Retry resets a job to queued regardless of its current status, so an operator
// can also recover a row left in uploading by a crashed drain. Attempts is kept.
func (r *Repo) Retry(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&UploadJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     StatusQueued,
			"progress":   0,
			"last_error": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
