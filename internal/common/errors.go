// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Ingestion errors.
	ErrFetchFailed  = errors.New("page fetch failed")
	ErrEmptyReceipt = errors.New("no merchant identified on page")
)
