package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"recibo/internal/common"
	"recibo/internal/model"
)

// SaveReceipt inserts a receipt and its line items in one transaction,
// filling in the generated IDs.
func (s *SQLiteStorage) SaveReceipt(ctx context.Context, receipt *model.Receipt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if receipt == nil {
		return fmt.Errorf("receipt cannot be nil")
	}
	if receipt.OriginURL == "" {
		return fmt.Errorf("receipt origin URL cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO receipts (merchant, address, total, issued_at, scanned_at, origin_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		receipt.Merchant, nullString(receipt.Address), receipt.Total,
		receipt.IssuedAt, receipt.ScannedAt, receipt.OriginURL)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: receipt URL %s", common.ErrDuplicateEntry, receipt.OriginURL)
		}
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	receiptID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get receipt ID: %w", err)
	}
	receipt.ID = receiptID

	for i := range receipt.Items {
		item := &receipt.Items[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO items (receipt_id, name, qty, unit_value, category)
			VALUES (?, ?, ?, ?, ?)`,
			receiptID, item.Name, item.Quantity, item.UnitValue, nullString(item.Category))
		if err != nil {
			return fmt.Errorf("failed to insert item %q: %w", item.Name, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item ID: %w", err)
		}
		item.ID = itemID
		item.ReceiptID = receiptID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit receipt: %w", err)
	}

	slog.Debug("saved receipt", "id", receiptID, "items", len(receipt.Items))
	return nil
}

// GetReceiptByURL returns the receipt ingested from the given origin URL,
// or nil when the URL has never been scanned.
func (s *SQLiteStorage) GetReceiptByURL(ctx context.Context, url string) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getReceipt(ctx, `WHERE origin_url = ?`, url)
}

// GetReceiptByID returns a receipt by primary key, or nil when absent.
func (s *SQLiteStorage) GetReceiptByID(ctx context.Context, id int64) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getReceipt(ctx, `WHERE id = ?`, id)
}

func (s *SQLiteStorage) getReceipt(ctx context.Context, where string, arg any) (*model.Receipt, error) {
	query := `
		SELECT id, merchant, COALESCE(address, ''), total, issued_at, scanned_at, origin_url
		FROM receipts ` + where

	var r model.Receipt
	var issuedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&r.ID, &r.Merchant, &r.Address, &r.Total, &issuedAt, &r.ScannedAt, &r.OriginURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt: %w", err)
	}
	if issuedAt.Valid {
		r.IssuedAt = &issuedAt.Time
	}

	items, err := s.itemsForReceipt(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Items = items

	return &r, nil
}

// GetReceipts returns the most recently scanned receipts, items included.
func (s *SQLiteStorage) GetReceipts(ctx context.Context, limit int) ([]model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, merchant, COALESCE(address, ''), total, issued_at, scanned_at, origin_url
		FROM receipts
		ORDER BY scanned_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var receipts []model.Receipt
	for rows.Next() {
		var r model.Receipt
		var issuedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Merchant, &r.Address, &r.Total, &issuedAt, &r.ScannedAt, &r.OriginURL); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if issuedAt.Valid {
			r.IssuedAt = &issuedAt.Time
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}

	for i := range receipts {
		items, err := s.itemsForReceipt(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}

	return receipts, nil
}

// DeleteReceipt removes a receipt; its items cascade.
func (s *SQLiteStorage) DeleteReceipt(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: receipt %d", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) itemsForReceipt(ctx context.Context, receiptID int64) ([]model.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_id, name, qty, unit_value, COALESCE(category, '')
		FROM items
		WHERE receipt_id = ?
		ORDER BY id`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Quantity, &item.UnitValue, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// GetItemByID returns one line item, or nil when absent.
func (s *SQLiteStorage) GetItemByID(ctx context.Context, id int64) (*model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var item model.LineItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, receipt_id, name, qty, unit_value, COALESCE(category, '')
		FROM items
		WHERE id = ?`, id).Scan(
		&item.ID, &item.ReceiptID, &item.Name, &item.Quantity, &item.UnitValue, &item.Category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	return &item, nil
}

// GetUncategorizedItems returns items with no category or the Outros
// sentinel, for reprocessing after rules or corrections improve.
func (s *SQLiteStorage) GetUncategorizedItems(ctx context.Context) ([]model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_id, name, qty, unit_value, COALESCE(category, '')
		FROM items
		WHERE category IS NULL OR category = '' OR category = 'Outros'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Quantity, &item.UnitValue, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// UpdateItemCategory reassigns a line item's category.
func (s *SQLiteStorage) UpdateItemCategory(ctx context.Context, itemID int64, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE items SET category = ? WHERE id = ?`, nullString(category), itemID)
	if err != nil {
		return fmt.Errorf("failed to update item category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: item %d", common.ErrNotFound, itemID)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
