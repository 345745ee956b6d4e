package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"recibo/internal/model"
)

// SaveCorrection appends a correction. Corrections are never updated in
// place; the latest one for a term wins at lookup time.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if correction == nil {
		return fmt.Errorf("correction cannot be nil")
	}
	if correction.Term == "" {
		return fmt.Errorf("correction term cannot be empty")
	}
	if correction.NewCategory == "" {
		return fmt.Errorf("correction category cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (term, previous_category, new_category)
		VALUES (?, ?, ?)`,
		correction.Term, nullString(correction.PreviousCategory), correction.NewCategory)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get correction ID: %w", err)
	}
	correction.ID = id

	slog.Debug("saved correction", "term", correction.Term, "category", correction.NewCategory)
	return nil
}

// GetLatestCorrection returns the most recent correction for an exact
// term, or nil when the term was never corrected.
func (s *SQLiteStorage) GetLatestCorrection(ctx context.Context, term string) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var c model.Correction
	var prev sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, term, previous_category, new_category, created_at
		FROM corrections
		WHERE term = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, term).Scan(&c.ID, &c.Term, &prev, &c.NewCategory, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query correction: %w", err)
	}
	c.PreviousCategory = prev.String
	return &c, nil
}

// GetRecentCorrections returns the newest corrections, deduplicated by
// term so each term appears once with its latest category. Used as
// few-shot examples for the AI classifier.
func (s *SQLiteStorage) GetRecentCorrections(ctx context.Context, limit int) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, term, previous_category, new_category, created_at
		FROM corrections
		WHERE id IN (SELECT MAX(id) FROM corrections GROUP BY term)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		var prev sql.NullString
		if err := rows.Scan(&c.ID, &c.Term, &prev, &c.NewCategory, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.PreviousCategory = prev.String
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}
	return corrections, nil
}
