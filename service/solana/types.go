package solana

import (
	"time"
)

// SignatureRecord is one entry from the signature listing for an address.
// This is our domain model, independent of the RPC response format.
type SignatureRecord struct {
	Signature          string
	Slot               uint64
	BlockTime          *time.Time // nil if the transaction is not finalized yet
	ConfirmationStatus *string    // "processed", "confirmed", or "finalized"
	Err                *string    // nil if the transaction succeeded on-chain
}

// Failed reports whether the transaction failed on-chain.
func (r *SignatureRecord) Failed() bool {
	return r.Err != nil
}

// AccountEntry is one account from a jsonParsed transaction message.
type AccountEntry struct {
	Address  string
	Signer   bool
	Writable bool
}

// AccountList holds the transaction's account keys in whichever of the two
// upstream encodings was returned: mapping-style entries (jsonParsed) or a
// plain ordered list of base58 strings (raw/base64). Exactly one variant is
// populated; both resolve to the same positional index space.
type AccountList struct {
	Parsed []AccountEntry
	Raw    []string
}

// Len returns the number of accounts in the populated variant.
func (l AccountList) Len() int {
	if l.Parsed != nil {
		return len(l.Parsed)
	}
	return len(l.Raw)
}

// IndexOf locates address in the account list by exact string equality.
// The second return is false if the address is not present.
func (l AccountList) IndexOf(address string) (int, bool) {
	if l.Parsed != nil {
		for i, entry := range l.Parsed {
			if entry.Address == address {
				return i, true
			}
		}
		return 0, false
	}
	for i, key := range l.Raw {
		if key == address {
			return i, true
		}
	}
	return 0, false
}

// TransactionDetail is the decoded result of a per-signature detail fetch.
// PreBalances and PostBalances are lamport snapshots indexed identically to
// Accounts. The invariant that all three have equal length is upstream's to
// keep; consumers must treat out-of-range lookups as unknown.
type TransactionDetail struct {
	Fee          *uint64 // lamports; nil when transaction meta is absent
	Accounts     AccountList
	PreBalances  []uint64
	PostBalances []uint64
}
