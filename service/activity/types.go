package activity

import (
	"time"
)

// Record status values, derived solely from the signature's on-chain error
// indicator.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// blockTimeLayout is the fixed layout for the human-readable block time.
const blockTimeLayout = "2006-01-02 15:04:05"

// Record is one normalized activity entry for a wallet.
// This is our domain model; the HTTP layer owns the JSON shape.
//
// Pointer fields are optional: Timestamp and BlockTime are absent when the
// transaction has no block time yet, SolAmount and Fee are absent when the
// detail fetch failed or the delta could not be determined.
type Record struct {
	Signature          string
	Slot               uint64
	Timestamp          *int64   // raw epoch seconds
	ConfirmationStatus *string  // "processed", "confirmed", or "finalized"
	SolAmount          *float64 // signed; positive = received, negative = sent
	Fee                *uint64  // lamports
	Status             string
	BlockTime          *string // "YYYY-MM-DD HH:MM:SS UTC"
}

// FormatBlockTime renders an epoch timestamp as a fixed UTC string. Epoch
// values outside the representable calendar range render as "Unknown" rather
// than propagating an error.
func FormatBlockTime(epoch int64) string {
	t := time.Unix(epoch, 0).UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return "Unknown"
	}
	return t.Format(blockTimeLayout) + " UTC"
}
