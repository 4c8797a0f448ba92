package solana

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

// ComputeDelta returns the net SOL balance change for address within a single
// transaction, derived from the pre/post balance snapshots. Positive means the
// address received SOL, negative means it sent SOL.
//
// The second return is false ("unknown") when the delta cannot be determined:
// the address is not in the account list, or its position is out of range for
// either balance snapshot. A delta is advisory data, so this function never
// returns an error and never panics.
func ComputeDelta(detail *TransactionDetail, address string) (float64, bool) {
	if detail == nil {
		return 0, false
	}

	idx, ok := detail.Accounts.IndexOf(address)
	if !ok {
		return 0, false
	}

	if idx >= len(detail.PreBalances) || idx >= len(detail.PostBalances) {
		return 0, false
	}

	// Lamport balances fit comfortably in int64 (total supply is well under
	// 2^63), so the signed difference cannot overflow.
	diff := int64(detail.PostBalances[idx]) - int64(detail.PreBalances[idx])

	return float64(diff) / LamportsPerSol, true
}
