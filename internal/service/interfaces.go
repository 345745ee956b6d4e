// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"recibo/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Receipt operations
	SaveReceipt(ctx context.Context, receipt *model.Receipt) error
	GetReceiptByURL(ctx context.Context, url string) (*model.Receipt, error)
	GetReceiptByID(ctx context.Context, id int64) (*model.Receipt, error)
	GetReceipts(ctx context.Context, limit int) ([]model.Receipt, error)
	DeleteReceipt(ctx context.Context, id int64) error

	// Line item operations
	GetItemByID(ctx context.Context, id int64) (*model.LineItem, error)
	GetUncategorizedItems(ctx context.Context) ([]model.LineItem, error)
	UpdateItemCategory(ctx context.Context, itemID int64, category string) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, icon, color string) (*model.Category, error)

	// Correction operations
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	GetLatestCorrection(ctx context.Context, term string) (*model.Correction, error)
	GetRecentCorrections(ctx context.Context, limit int) ([]model.Correction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AIClassifier batches unresolved item names to an external LLM. The
// returned map always carries a key for every input name; implementations
// degrade to the Outros sentinel rather than failing a batch on bad model
// output. Only transport-level failures surface as errors.
type AIClassifier interface {
	ClassifyBatch(ctx context.Context, names []string, categories []string, corrections []model.Correction) (map[string]string, error)
}

// Fetcher retrieves the raw HTML behind a receipt's QR-code URL.
// Transport errors are fatal to that receipt's ingestion.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
