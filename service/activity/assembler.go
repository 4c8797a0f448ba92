package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/brojonat/soltracker/service/metrics"
	"github.com/brojonat/soltracker/service/solana"
	solanago "github.com/gagliardetto/solana-go"
)

// LedgerClient is the subset of the Solana client the assembler consumes.
// It matches *solana.Client and allows mocking the ledger in tests.
type LedgerClient interface {
	ListRecentSignatures(ctx context.Context, wallet solanago.PublicKey, limit int) ([]solana.SignatureRecord, error)
	GetTransaction(ctx context.Context, signature string) (*solana.TransactionDetail, error)
}

// Assembler builds the per-address activity list: it fetches the recent
// signature listing, fans out bounded concurrent detail fetches, computes
// balance deltas, and joins everything back in listing order.
//
// Failure policy: a listing failure fails the whole request (there is nothing
// to assemble without signatures); any per-signature failure degrades that one
// record to signature metadata only and never aborts the request.
type Assembler struct {
	ledger  LedgerClient
	limit   int
	timeout time.Duration
	pool    pond.Pool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAssembler creates an Assembler. limit bounds the signature listing,
// concurrency bounds simultaneous detail fetches, and timeout (if positive)
// caps the whole assembly; signatures still unresolved at the deadline degrade
// to metadata-only records. If m is nil, no metrics will be recorded.
func NewAssembler(ledger LedgerClient, limit, concurrency int, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Assembler {
	queueSize := limit
	if queueSize < 16 {
		queueSize = 16
	}

	return &Assembler{
		ledger:  ledger,
		limit:   limit,
		timeout: timeout,
		pool:    pond.NewPool(concurrency, pond.WithQueueSize(queueSize)),
		metrics: m,
		logger:  logger,
	}
}

// Close stops the worker pool, waiting for in-flight tasks to finish.
func (a *Assembler) Close() {
	a.pool.StopAndWait()
}

// GetActivities returns the recent activity records for wallet, newest first.
// The output order always matches the signature listing order regardless of
// the order detail fetches complete in.
func (a *Assembler) GetActivities(ctx context.Context, wallet solanago.PublicKey) ([]Record, error) {
	start := time.Now()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	sigs, err := a.ledger.ListRecentSignatures(ctx, wallet, a.limit)
	if err != nil {
		return nil, err
	}

	// Every record is seeded from its signature metadata up front, so a detail
	// fetch that fails or never runs still leaves a complete metadata-only
	// record in place.
	records := make([]Record, len(sigs))
	for i := range sigs {
		records[i] = baseRecord(&sigs[i])
	}

	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i := range sigs {
		i := i
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			a.enrich(groupCtx, wallet, &sigs[i], &records[i])
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, pond.ErrGroupStopped) {
		a.logger.WarnContext(ctx, "activity fan-out finished with error",
			"wallet", wallet.String(),
			"error", err,
		)
	}

	if a.metrics != nil {
		for i := range records {
			a.metrics.RecordActivityAssembled(records[i].Status)
		}
		a.metrics.RecordAssemblyDuration(time.Since(start).Seconds())
	}

	a.logger.InfoContext(ctx, "assembled wallet activities",
		"wallet", wallet.String(),
		"count", len(records),
	)

	return records, nil
}

// enrich fetches the transaction detail for one signature and fills in the
// record's fee and balance delta. On any failure the record keeps its
// metadata-only shape.
func (a *Assembler) enrich(ctx context.Context, wallet solanago.PublicKey, sig *solana.SignatureRecord, rec *Record) {
	detail, err := a.ledger.GetTransaction(ctx, sig.Signature)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to fetch transaction detail, emitting metadata-only record",
			"signature", sig.Signature,
			"error", err,
		)
		if a.metrics != nil {
			a.metrics.RecordDegradedRecord(degradationReason(err))
		}
		return
	}

	rec.Fee = detail.Fee

	if delta, ok := solana.ComputeDelta(detail, wallet.String()); ok {
		rec.SolAmount = &delta
		if a.metrics != nil {
			a.metrics.RecordDeltaResolution("known")
		}
	} else {
		a.logger.DebugContext(ctx, "balance delta unknown",
			"signature", sig.Signature,
			"accounts", detail.Accounts.Len(),
		)
		if a.metrics != nil {
			a.metrics.RecordDeltaResolution("unknown")
		}
	}
}

// baseRecord builds the metadata-only record for one signature. Status derives
// purely from the on-chain error indicator, independent of whether the detail
// fetch later succeeds.
func baseRecord(sig *solana.SignatureRecord) Record {
	rec := Record{
		Signature:          sig.Signature,
		Slot:               sig.Slot,
		ConfirmationStatus: sig.ConfirmationStatus,
		Status:             StatusSuccess,
	}

	if sig.Failed() {
		rec.Status = StatusFailed
	}

	if sig.BlockTime != nil {
		ts := sig.BlockTime.Unix()
		rec.Timestamp = &ts
		formatted := FormatBlockTime(ts)
		rec.BlockTime = &formatted
	}

	return rec
}

// degradationReason labels a detail-fetch failure for metrics.
func degradationReason(err error) string {
	var upstream *solana.UpstreamError
	switch {
	case errors.Is(err, solana.ErrNotFound):
		return "not_found"
	case errors.Is(err, solana.ErrUnavailable):
		return "unavailable"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "error"
	}
}
