package db

import (
	"fmt"

	"fruitpos/internal/auth"
	"fruitpos/internal/invoice"
	"fruitpos/internal/uploads"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&invoice.Invoice{},
		&invoice.InvoiceItem{},
		&uploads.UploadJob{},
	); err != nil {
		return err
	}

	// Helpful indexes. Claim scans (status, created_at); the enqueue dedup
	// check probes (target_item_id, kind, status). Deliberately no unique
	// constraint on the dedup key: the enqueuer's existence check is best
	// effort and a constraint would turn its silent skip into an error.
	stmts := []string{
		`create index if not exists idx_upload_jobs_claim on upload_jobs(status, created_at);`,
		`create index if not exists idx_upload_jobs_dedup on upload_jobs(target_item_id, kind, status);`,
		`create index if not exists idx_invoice_items_invoice on invoice_items(invoice_id);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
