package uploads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimBatchOldestFirst(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		j := seedJob(t, repo, "INV-1", uint64(i+1), KindThumb, pngPayload(64), base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, j.ID)
	}

	claimed, err := repo.ClaimBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, ids[0], claimed[0].ID)
	assert.Equal(t, ids[1], claimed[1].ID)

	for _, j := range claimed {
		got, err := repo.ByID(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUploading, got.Status)
		assert.Equal(t, 1, got.Attempts)
		assert.Equal(t, 0, got.Progress)
	}

	var queued int64
	require.NoError(t, repo.DB.Model(&UploadJob{}).Where("status = ?", StatusQueued).Count(&queued).Error)
	assert.Equal(t, int64(3), queued)
}

func TestClaimBatchNeverDoubleClaims(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		seedJob(t, repo, "INV-1", uint64(i+1), KindThumb, pngPayload(64), base.Add(time.Duration(i)*time.Second))
	}

	first, err := repo.ClaimBatch(ctx, 10)
	require.NoError(t, err)
	second, err := repo.ClaimBatch(ctx, 10)
	require.NoError(t, err)

	assert.Len(t, first, 4)
	assert.Empty(t, second)
}

func TestClaimBatchSkipsRowsTakenMidway(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	j := seedJob(t, repo, "INV-1", 1, KindThumb, pngPayload(64), time.Now())

	// Simulate a competing drain winning the conditional update first.
	require.NoError(t, repo.DB.Model(&UploadJob{}).
		Where("id = ?", j.ID).
		Update("status", StatusUploading).Error)

	claimed, err := repo.ClaimBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestRetryResetsJob(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	j := seedJob(t, repo, "INV-1", 1, KindFull, pngPayload(64), time.Now())
	_, err := repo.ClaimBatch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, repo.MarkError(ctx, j.ID, "disk full"))

	require.NoError(t, repo.Retry(ctx, j.ID))

	got, err := repo.ByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
	assert.Equal(t, 0, got.Progress)
	assert.Nil(t, got.LastError)
	assert.Equal(t, 1, got.Attempts, "retry must not reset attempts")
}

func TestRetryRecoversStuckUploading(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	// A crash mid-drain leaves the row in uploading with no terminal state.
	j := seedJob(t, repo, "INV-1", 1, KindThumb, pngPayload(64), time.Now())
	_, err := repo.ClaimBatch(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.Retry(ctx, j.ID))

	got, err := repo.ByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)

	claimed, err := repo.ClaimBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, j.ID, claimed[0].ID)
	assert.Equal(t, 2, claimed[0].Attempts)
}

func TestRetryUnknownJob(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	assert.ErrorIs(t, repo.Retry(context.Background(), "no-such-id"), ErrNotFound)
}

func TestListNewestFirstAndPaginated(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		j := seedJob(t, repo, "INV-1", uint64(i+1), KindThumb, pngPayload(64), base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, j.ID)
	}

	rows, total, err := repo.List(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, rows, 2)
	assert.Equal(t, ids[4], rows[0].ID)
	assert.Equal(t, ids[3], rows[1].ID)

	rows, _, err = repo.List(ctx, "", 3, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ids[0], rows[0].ID)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	j := seedJob(t, repo, "INV-1", 1, KindThumb, pngPayload(64), time.Now().Add(-time.Minute))
	seedJob(t, repo, "INV-1", 2, KindThumb, pngPayload(64), time.Now())
	require.NoError(t, repo.MarkError(ctx, j.ID, "boom"))

	rows, total, err := repo.List(ctx, StatusError, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, j.ID, rows[0].ID)
}

func TestCountByStatus(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	a := seedJob(t, repo, "INV-1", 1, KindThumb, pngPayload(64), time.Now().Add(-2*time.Minute))
	seedJob(t, repo, "INV-1", 2, KindThumb, pngPayload(64), time.Now().Add(-time.Minute))
	seedJob(t, repo, "INV-1", 3, KindThumb, pngPayload(64), time.Now())
	require.NoError(t, repo.MarkError(ctx, a.ID, "boom"))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[StatusQueued])
	assert.Equal(t, int64(1), counts[StatusError])
	assert.Equal(t, int64(0), counts[StatusSuccess])
	assert.Equal(t, int64(0), counts[StatusUploading])
}

func TestActiveJobFallsBackToIndex(t *testing.T) {
	repo := &Repo{DB: openTestDB(t)}
	ctx := context.Background()

	job := &UploadJob{
		InvoiceCode:     "INV-9",
		TargetItemIndex: 2,
		Kind:            KindFull,
		Status:          StatusQueued,
		SourcePayload:   pngPayload(64),
	}
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.ActiveJob(ctx, "INV-9", 0, 2, KindFull)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	got, err = repo.ActiveJob(ctx, "INV-9", 0, 3, KindFull)
	require.NoError(t, err)
	assert.Nil(t, got)
}
