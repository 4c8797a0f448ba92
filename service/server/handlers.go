package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/brojonat/soltracker/service/activity"
	solanago "github.com/gagliardetto/solana-go"
)

const (
	maxAddressLength = 100 // Solana addresses are 44 chars, give buffer
)

var (
	// Valid Solana address characters: base58 (no 0, O, I, l)
	validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// ActivityService is the assembler surface the HTTP layer consumes.
// It matches *activity.Assembler and allows mocking in tests.
type ActivityService interface {
	GetActivities(ctx context.Context, wallet solanago.PublicKey) ([]activity.Record, error)
}

// handleGetWalletActivities returns a handler that serves the recent activity
// list for a wallet address.
// GET /api/wallet/{address}/activities
func handleGetWalletActivities(svc ActivityService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		wallet, err := parseAddress(address)
		if err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		records, err := svc.GetActivities(r.Context(), wallet)
		if err != nil {
			logger.Error("failed to assemble activities", "address", address, "error", err)
			writeError(w, fmt.Sprintf("failed to fetch activities: %v", err), http.StatusInternalServerError)
			return
		}

		logger.Debug("activities assembled", "address", address, "count", len(records))

		resp := make([]activityResponse, len(records))
		for i := range records {
			resp[i] = recordToResponse(&records[i])
		}

		writeJSON(w, resp, http.StatusOK)
	})
}

// activityResponse is the JSON response format for one activity record.
type activityResponse struct {
	Signature          string   `json:"signature"`
	Timestamp          *int64   `json:"timestamp,omitempty"`
	Slot               uint64   `json:"slot"`
	ConfirmationStatus *string  `json:"confirmation_status,omitempty"`
	SolAmount          *float64 `json:"sol_amount,omitempty"`
	Fee                *uint64  `json:"fee,omitempty"`
	Status             string   `json:"status"`
	BlockTime          *string  `json:"block_time,omitempty"`
}

// recordToResponse converts a domain Record to a response format.
func recordToResponse(rec *activity.Record) activityResponse {
	return activityResponse{
		Signature:          rec.Signature,
		Timestamp:          rec.Timestamp,
		Slot:               rec.Slot,
		ConfirmationStatus: rec.ConfirmationStatus,
		SolAmount:          rec.SolAmount,
		Fee:                rec.Fee,
		Status:             rec.Status,
		BlockTime:          rec.BlockTime,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// parseAddress validates a wallet address and decodes it into a public key.
// The cheap format checks run first so obviously hostile input never reaches
// the base58 decoder.
func parseAddress(address string) (solanago.PublicKey, error) {
	if address == "" {
		return solanago.PublicKey{}, errorf("address is required")
	}

	if len(address) > maxAddressLength {
		return solanago.PublicKey{}, errorf("address too long: maximum length is %d characters", maxAddressLength)
	}

	for _, r := range address {
		if r == 0 || unicode.IsControl(r) {
			return solanago.PublicKey{}, errorf("invalid characters in address: control characters not allowed")
		}
	}

	if !validAddressRegex.MatchString(address) {
		return solanago.PublicKey{}, errorf("invalid address format: must contain only valid base58 characters")
	}

	// Strict decode: anything that is not exactly 32 bytes is rejected.
	wallet, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return solanago.PublicKey{}, errorf("invalid address: %v", err)
	}

	return wallet, nil
}

// errorf is a helper to format error strings.
func errorf(format string, args ...interface{}) error {
	return &validationError{msg: strings.TrimSpace(fmt.Sprintf(format, args...))}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}
