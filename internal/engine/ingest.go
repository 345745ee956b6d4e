package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recibo/internal/common"
	"recibo/internal/model"
	"recibo/internal/nfce"
	"recibo/internal/service"
)

// Ingestor runs the full pipeline for one receipt URL: short-circuit on a
// known URL, fetch, extract, classify, persist.
type Ingestor struct {
	store    service.Storage
	fetcher  service.Fetcher
	resolver *Resolver
	logger   *slog.Logger
}

// NewIngestor wires the ingestion pipeline together.
func NewIngestor(store service.Storage, fetcher service.Fetcher, resolver *Resolver, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, fetcher: fetcher, resolver: resolver, logger: logger}
}

// ScanURL ingests the receipt behind url. When the URL was scanned before,
// the stored receipt is returned with cached=true and nothing is fetched.
// Transport failures are the only fatal outcome; extraction and
// classification degrade field by field.
func (i *Ingestor) ScanURL(ctx context.Context, url, issuerCode string) (*model.Receipt, bool, error) {
	if url == "" {
		return nil, false, fmt.Errorf("receipt URL cannot be empty")
	}

	existing, err := i.store.GetReceiptByURL(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for existing receipt: %w", err)
	}
	if existing != nil {
		i.logger.Info("receipt already ingested", "url", url, "receipt_id", existing.ID)
		return existing, true, nil
	}

	html, err := i.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", common.ErrFetchFailed, err)
	}

	issuer := nfce.ParseIssuer(issuerCode)
	data, err := nfce.Parse(html, issuer)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse receipt page: %w", err)
	}
	if data.Merchant == nfce.UnknownMerchant && len(data.Items) == 0 {
		return nil, false, common.ErrEmptyReceipt
	}

	names := make([]string, 0, len(data.Items))
	for _, item := range data.Items {
		names = append(names, item.Name)
	}
	categories := i.resolver.ResolveBatch(ctx, names)

	receipt := &model.Receipt{
		Merchant:  data.Merchant,
		Address:   data.Address,
		Total:     data.Total,
		OriginURL: url,
		ScannedAt: time.Now().UTC(),
	}
	if data.IssueDate != "" {
		if issued, parseErr := time.Parse("2006-01-02", data.IssueDate); parseErr == nil {
			receipt.IssuedAt = &issued
		}
	}
	for _, item := range data.Items {
		receipt.Items = append(receipt.Items, model.LineItem{
			Name:      item.Name,
			Quantity:  item.Qty,
			UnitValue: item.Value,
			Category:  categories[item.Name],
		})
	}

	if err := i.store.SaveReceipt(ctx, receipt); err != nil {
		return nil, false, fmt.Errorf("failed to save receipt: %w", err)
	}

	i.logger.Info("receipt ingested",
		"url", url,
		"issuer", issuer.String(),
		"merchant", receipt.Merchant,
		"items", len(receipt.Items),
		"total", receipt.Total)

	return receipt, false, nil
}
