package model

import "time"

// Correction records a human override of an assigned category. The log is
// append-only: the most recent correction for an exact item-name string is
// the one the resolver trusts.
type Correction struct {
	CreatedAt        time.Time
	Term             string
	PreviousCategory string
	NewCategory      string
	ID               int64
}
