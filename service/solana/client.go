package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/soltracker/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Client provides the two ledger operations the service consumes: listing
// recent signatures for an address and fetching full transaction detail for a
// signature. It wraps the RPC client with domain-specific types and maps all
// failures into the local error taxonomy.
//
// The client performs no retries; retry policy, if any, belongs to the caller.
// It holds no state beyond the RPC handle and is safe for concurrent use.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet", "devnet", or RPC hostname).
// If metrics is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// ListRecentSignatures fetches up to limit signature records referencing the
// wallet, newest first. Fails with ErrUnavailable if the remote service cannot
// be reached, or *UpstreamError if it answered with an application error.
func (c *Client) ListRecentSignatures(ctx context.Context, wallet solana.PublicKey, limit int) ([]SignatureRecord, error) {
	opts := &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	}

	start := time.Now()
	signatures, err := c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		c.logger.ErrorContext(ctx, "failed to get signatures",
			"wallet", wallet.String(),
			"error", err,
		)
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetSignaturesForAddress", status, c.endpoint, duration)
		if err == nil {
			c.metrics.RecordRPCSignaturesPerCall(c.endpoint, float64(len(signatures)))
		}
	}

	if err != nil {
		return nil, c.mapRPCError("GetSignaturesForAddress", err)
	}

	c.logger.DebugContext(ctx, "fetched transaction signatures",
		"wallet", wallet.String(),
		"count", len(signatures),
	)

	records := make([]SignatureRecord, 0, len(signatures))
	for _, sig := range signatures {
		records = append(records, signatureToDomain(sig))
	}
	return records, nil
}

// GetTransaction fetches and decodes the transaction detail for a signature.
// It requests the jsonParsed encoding first, which yields mapping-style
// account entries; if that fails for any reason other than the transaction
// being unknown, it falls back to the base64 encoding, which yields a plain
// account key list. Fails with ErrNotFound for unknown, pruned, or malformed
// signatures.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid signature %q", ErrNotFound, signature)
	}

	maxVersion := uint64(0)

	start := time.Now()
	parsed, err := c.rpc.GetParsedTransaction(ctx, sig, &rpc.GetParsedTransactionOpts{
		MaxSupportedTransactionVersion: &maxVersion,
	})
	duration := time.Since(start).Seconds()

	parsedStatus := "success"
	if err != nil {
		parsedStatus = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetParsedTransaction", parsedStatus, c.endpoint, duration)
	}

	if err == nil {
		return parsedToDetail(parsed), nil
	}

	mapped := c.mapRPCError("GetParsedTransaction", err)
	if errors.Is(mapped, ErrNotFound) {
		return nil, mapped
	}

	// Some RPC providers reject the jsonParsed encoding, and parsed responses
	// for exotic transactions occasionally fail to decode. Retry once with the
	// base64 encoding before giving up.
	c.logger.WarnContext(ctx, "jsonParsed fetch failed, retrying with base64 encoding",
		"signature", signature,
		"error", err,
	)

	rawOpts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxVersion,
	}
	rawStart := time.Now()
	result, rawErr := c.rpc.GetTransaction(ctx, sig, rawOpts)
	rawDuration := time.Since(rawStart).Seconds()

	rawStatus := "success"
	if rawErr != nil {
		rawStatus = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetTransaction", rawStatus, c.endpoint, rawDuration)
	}

	if rawErr != nil {
		return nil, c.mapRPCError("GetTransaction", rawErr)
	}

	detail, err := rawToDetail(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return detail, nil
}

// signatureToDomain converts an RPC TransactionSignature to our domain SignatureRecord.
func signatureToDomain(sig *rpc.TransactionSignature) SignatureRecord {
	rec := SignatureRecord{
		Signature: sig.Signature.String(),
		Slot:      sig.Slot,
	}

	if sig.BlockTime != nil {
		t := sig.BlockTime.Time()
		rec.BlockTime = &t
	}

	if sig.ConfirmationStatus != "" {
		status := string(sig.ConfirmationStatus)
		rec.ConfirmationStatus = &status
	}

	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		rec.Err = &errMsg
	}

	return rec
}

// parsedToDetail converts a jsonParsed transaction result to the domain
// TransactionDetail, populating the mapping-style account list variant.
func parsedToDetail(result *rpc.GetParsedTransactionResult) *TransactionDetail {
	detail := &TransactionDetail{}
	if result == nil {
		return detail
	}

	if result.Meta != nil {
		fee := result.Meta.Fee
		detail.Fee = &fee
		detail.PreBalances = result.Meta.PreBalances
		detail.PostBalances = result.Meta.PostBalances
	}

	if result.Transaction != nil {
		keys := result.Transaction.Message.AccountKeys
		entries := make([]AccountEntry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, AccountEntry{
				Address:  key.PublicKey.String(),
				Signer:   key.Signer,
				Writable: key.Writable,
			})
		}
		detail.Accounts = AccountList{Parsed: entries}
	}

	return detail
}

// rawToDetail converts a base64-encoded transaction result to the domain
// TransactionDetail, populating the plain account list variant.
func rawToDetail(result *rpc.GetTransactionResult) (*TransactionDetail, error) {
	detail := &TransactionDetail{}
	if result == nil {
		return detail, nil
	}

	if result.Meta != nil {
		fee := result.Meta.Fee
		detail.Fee = &fee
		detail.PreBalances = result.Meta.PreBalances
		detail.PostBalances = result.Meta.PostBalances
	}

	if result.Transaction != nil {
		tx, err := result.Transaction.GetTransaction()
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		keys := make([]string, 0, len(tx.Message.AccountKeys))
		for _, key := range tx.Message.AccountKeys {
			keys = append(keys, key.String())
		}
		detail.Accounts = AccountList{Raw: keys}
	}

	return detail, nil
}

// mapRPCError translates solana-go errors into the local taxonomy. Remote
// application errors become *UpstreamError; anything else (network failure,
// timeout, decode trouble) becomes ErrUnavailable.
func (c *Client) mapRPCError(method string, err error) error {
	if errors.Is(err, rpc.ErrNotFound) {
		return ErrNotFound
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return &UpstreamError{
			Method:  method,
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
