package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fruitpos/internal/storage"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection, or every pooled conn gets its own empty :memory: db.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&UploadJob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// pngPayload builds a valid inline PNG data URL of roughly n bytes of image body.
func pngPayload(n int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageBytes(n))
}

func imageBytes(n int) []byte {
	return bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, (n+3)/4)[:n]
}

// seedJob inserts a job directly through the repo, bypassing enqueue
// validation, with an explicit creation time for ordering tests.
func seedJob(t *testing.T, repo *Repo, code string, itemID uint64, kind Kind, payload string, createdAt time.Time) *UploadJob {
	t.Helper()
	job := &UploadJob{
		InvoiceCode:   code,
		TargetItemID:  itemID,
		Kind:          kind,
		Status:        StatusQueued,
		SourcePayload: payload,
		CreatedAt:     createdAt,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func newTestProcessor(t *testing.T, repo *Repo, items ItemImageWriter) *Processor {
	t.Helper()
	return &Processor{
		Repo:  repo,
		Store: &storage.LocalStore{Dir: t.TempDir(), BaseURL: "/uploads/files"},
		Items: items,
		Log:   zap.NewNop(),
	}
}

// fakeItemWriter records side writes; Err makes every call fail.
type fakeItemWriter struct {
	Err   error
	Calls []itemWrite
}

type itemWrite struct {
	ItemID uint64
	Kind   Kind
	URL    string
}

func (f *fakeItemWriter) SetItemImage(_ context.Context, itemID uint64, kind Kind, url string) error {
	f.Calls = append(f.Calls, itemWrite{ItemID: itemID, Kind: kind, URL: url})
	return f.Err
}
