// Package engine orchestrates the three classification tiers: keyword
// rules, the learned-correction memory, and the AI fallback. The resolver
// is the only component allowed to consult all three.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"recibo/internal/model"
	"recibo/internal/rules"
	"recibo/internal/service"
)

// Resolver assigns one category per item name. It holds no mutable state
// of its own; the correction log in storage is the only thing that makes
// its answers change over time.
type Resolver struct {
	store  service.Storage
	ai     service.AIClassifier
	logger *slog.Logger
}

// NewResolver creates a resolver. ai may be nil, in which case the AI tier
// is skipped and rule/memory results stand.
func NewResolver(store service.Storage, ai service.AIClassifier, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, ai: ai, logger: logger}
}

// ResolveBatch classifies every name in the input. The result always has a
// key per distinct input name; duplicates resolve identically. Per name
// the tiers short-circuit in order: decisive rule match, latest exact-term
// correction, AI batch answer, then the rule result verbatim.
func (r *Resolver) ResolveBatch(ctx context.Context, names []string) map[string]string {
	resolved := make(map[string]string, len(names))
	ruleResults := make(map[string]string, len(names))
	var pending []string

	for _, name := range names {
		if _, seen := resolved[name]; seen {
			continue
		}
		if _, seen := ruleResults[name]; seen {
			continue
		}

		ruleCategory := rules.Classify(name)
		ruleResults[name] = ruleCategory
		if ruleCategory != rules.FallbackFood && ruleCategory != rules.Uncategorized {
			resolved[name] = ruleCategory
			continue
		}

		correction, err := r.store.GetLatestCorrection(ctx, name)
		if err != nil {
			r.logger.Warn("correction lookup failed", "item", name, "error", err)
		}
		if correction != nil {
			r.logger.Debug("correction memory hit", "item", name, "category", correction.NewCategory)
			resolved[name] = correction.NewCategory
			continue
		}

		pending = append(pending, name)
	}

	if len(pending) > 0 && r.ai != nil {
		r.classifyWithAI(ctx, pending, resolved)
	}

	// Whatever is still open keeps the rule tier's verdict.
	for name, ruleCategory := range ruleResults {
		if _, ok := resolved[name]; !ok {
			resolved[name] = ruleCategory
		}
	}

	return resolved
}

// classifyWithAI runs the pending names through the AI tier. Failures are
// absorbed: classification never breaks ingestion.
func (r *Resolver) classifyWithAI(ctx context.Context, pending []string, resolved map[string]string) {
	categories, err := r.categoryNames(ctx)
	if err != nil {
		r.logger.Warn("skipping AI tier, category load failed", "error", err)
		return
	}

	corrections, err := r.store.GetRecentCorrections(ctx, 10)
	if err != nil {
		r.logger.Warn("proceeding without few-shot corrections", "error", err)
		corrections = nil
	}

	answers, err := r.ai.ClassifyBatch(ctx, pending, categories, corrections)
	if err != nil {
		r.logger.Warn("AI classification failed, keeping rule results", "error", err, "items", len(pending))
		return
	}

	for _, name := range pending {
		if category, ok := answers[name]; ok && category != rules.Uncategorized {
			resolved[name] = category
		}
	}
}

func (r *Resolver) categoryNames(ctx context.Context) ([]string, error) {
	categories, err := r.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

// RecordCorrection appends a human override to the correction log so that
// future resolutions of the exact item name honor it. No-op corrections
// (old == new) are discarded; the new category must exist.
func (r *Resolver) RecordCorrection(ctx context.Context, itemName, oldCategory, newCategory string) error {
	if itemName == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if newCategory == "" {
		return fmt.Errorf("new category cannot be empty")
	}
	if oldCategory == newCategory {
		return nil
	}

	category, err := r.store.GetCategoryByName(ctx, newCategory)
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("unknown category %q", newCategory)
	}

	correction := &model.Correction{
		Term:             itemName,
		PreviousCategory: oldCategory,
		NewCategory:      newCategory,
	}
	if err := r.store.SaveCorrection(ctx, correction); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	r.logger.Info("correction recorded",
		"item", itemName,
		"from", oldCategory,
		"to", newCategory)
	return nil
}
