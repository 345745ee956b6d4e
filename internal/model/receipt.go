// Package model defines the core domain models used throughout the application.
package model

import "time"

// Receipt represents one NFC-e purchase extracted from an issuer's page.
// The origin URL is the natural key: a URL is ingested at most once.
type Receipt struct {
	ScannedAt time.Time
	IssuedAt  *time.Time
	Merchant  string
	Address   string
	OriginURL string
	Items     []LineItem
	Total     float64
	ID        int64
}

// LineItem is a single product row on a receipt. Category is empty until
// the resolver has assigned one.
type LineItem struct {
	Name      string
	Category  string
	Quantity  float64
	UnitValue float64
	ID        int64
	ReceiptID int64
}
