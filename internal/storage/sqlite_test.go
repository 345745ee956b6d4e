package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"recibo/internal/common"
	"recibo/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func testReceipt(url string) *model.Receipt {
	issued := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return &model.Receipt{
		Merchant:  "SUPERMERCADO TESTE",
		Address:   "Rua das Flores, 100",
		Total:     23.40,
		OriginURL: url,
		ScannedAt: time.Now().UTC(),
		IssuedAt:  &issued,
		Items: []model.LineItem{
			{Name: "LEITE INTEGRAL 1L", Quantity: 2, UnitValue: 4.50, Category: "Laticínios"},
			{Name: "TEMPERO EXOTICO", Quantity: 1, UnitValue: 14.40, Category: "Outros"},
		},
	}
}

func TestMigrateSeedsDefaultCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if len(categories) != len(model.DefaultCategories) {
		t.Errorf("got %d categories, want %d", len(categories), len(model.DefaultCategories))
	}

	cat, err := store.GetCategoryByName(ctx, "Laticínios")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if cat == nil {
		t.Fatal("expected seeded category Laticínios")
	}
	if cat.Icon == "" || cat.Color == "" {
		t.Errorf("seeded category missing icon/color: %+v", cat)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("version = %d, want %d", version, ExpectedSchemaVersion)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if len(categories) != len(model.DefaultCategories) {
		t.Errorf("re-migration duplicated seeds: %d categories", len(categories))
	}
}

func TestSaveAndGetReceipt(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	receipt := testReceipt("https://sefaz.example/qr?p=1")
	if err := store.SaveReceipt(ctx, receipt); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}
	if receipt.ID == 0 {
		t.Error("receipt ID not backfilled")
	}
	if receipt.Items[0].ID == 0 || receipt.Items[0].ReceiptID != receipt.ID {
		t.Errorf("item IDs not backfilled: %+v", receipt.Items[0])
	}

	got, err := store.GetReceiptByID(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("GetReceiptByID: %v", err)
	}
	if got == nil {
		t.Fatal("receipt not found")
	}
	if got.Merchant != receipt.Merchant || got.Total != receipt.Total {
		t.Errorf("got %+v", got)
	}
	if got.IssuedAt == nil || got.IssuedAt.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("IssuedAt = %v", got.IssuedAt)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	if got.Items[0].Category != "Laticínios" {
		t.Errorf("item category = %q", got.Items[0].Category)
	}
}

func TestGetReceiptByURL(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	got, err := store.GetReceiptByURL(ctx, "https://sefaz.example/unknown")
	if err != nil {
		t.Fatalf("GetReceiptByURL: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unseen URL, got %+v", got)
	}

	receipt := testReceipt("https://sefaz.example/qr?p=2")
	if err := store.SaveReceipt(ctx, receipt); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}

	got, err = store.GetReceiptByURL(ctx, receipt.OriginURL)
	if err != nil {
		t.Fatalf("GetReceiptByURL: %v", err)
	}
	if got == nil || got.ID != receipt.ID {
		t.Errorf("got %+v", got)
	}
}

func TestSaveReceiptDuplicateURL(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	url := "https://sefaz.example/qr?p=3"
	if err := store.SaveReceipt(ctx, testReceipt(url)); err != nil {
		t.Fatalf("first SaveReceipt: %v", err)
	}
	err := store.SaveReceipt(ctx, testReceipt(url))
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestDeleteReceiptCascades(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	receipt := testReceipt("https://sefaz.example/qr?p=4")
	if err := store.SaveReceipt(ctx, receipt); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}
	itemID := receipt.Items[0].ID

	if err := store.DeleteReceipt(ctx, receipt.ID); err != nil {
		t.Fatalf("DeleteReceipt: %v", err)
	}

	item, err := store.GetItemByID(ctx, itemID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if item != nil {
		t.Errorf("item survived receipt deletion: %+v", item)
	}

	if err := store.DeleteReceipt(ctx, receipt.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting missing receipt, got %v", err)
	}
}

func TestGetReceiptsOrdering(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	older := testReceipt("https://sefaz.example/qr?p=5")
	older.ScannedAt = time.Now().UTC().Add(-2 * time.Hour)
	newer := testReceipt("https://sefaz.example/qr?p=6")
	newer.ScannedAt = time.Now().UTC()

	if err := store.SaveReceipt(ctx, older); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}
	if err := store.SaveReceipt(ctx, newer); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}

	receipts, err := store.GetReceipts(ctx, 10)
	if err != nil {
		t.Fatalf("GetReceipts: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("got %d receipts, want 2", len(receipts))
	}
	if receipts[0].ID != newer.ID {
		t.Errorf("expected newest first, got ID %d", receipts[0].ID)
	}
	if len(receipts[0].Items) != 2 {
		t.Errorf("listing should include items, got %d", len(receipts[0].Items))
	}
}

func TestUpdateItemCategoryAndUncategorized(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	receipt := testReceipt("https://sefaz.example/qr?p=7")
	if err := store.SaveReceipt(ctx, receipt); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}

	uncategorized, err := store.GetUncategorizedItems(ctx)
	if err != nil {
		t.Fatalf("GetUncategorizedItems: %v", err)
	}
	if len(uncategorized) != 1 || uncategorized[0].Name != "TEMPERO EXOTICO" {
		t.Fatalf("got %+v, want the Outros item", uncategorized)
	}

	itemID := uncategorized[0].ID
	if err := store.UpdateItemCategory(ctx, itemID, "Mercearia"); err != nil {
		t.Fatalf("UpdateItemCategory: %v", err)
	}

	item, err := store.GetItemByID(ctx, itemID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if item.Category != "Mercearia" {
		t.Errorf("category = %q", item.Category)
	}

	uncategorized, err = store.GetUncategorizedItems(ctx)
	if err != nil {
		t.Fatalf("GetUncategorizedItems: %v", err)
	}
	if len(uncategorized) != 0 {
		t.Errorf("still uncategorized: %+v", uncategorized)
	}

	if err := store.UpdateItemCategory(ctx, 9999, "Mercearia"); err == nil {
		t.Error("expected error for missing item")
	}
}

func TestCreateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Jardinagem", "🌱", "#2ecc71")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.ID == 0 || cat.Name != "Jardinagem" {
		t.Errorf("got %+v", cat)
	}

	if _, err := store.CreateCategory(ctx, "Jardinagem", "", ""); err == nil {
		t.Error("expected duplicate name error")
	}
	if _, err := store.CreateCategory(ctx, "  ", "", ""); err == nil {
		t.Error("expected empty name error")
	}
}
