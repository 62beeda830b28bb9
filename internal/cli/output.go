package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"kb/internal/domain"
)

// Envelope is the uniform JSON shape every command prints on stdout.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a stable machine-readable code plus the message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeOK(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Envelope{Status: "ok", Data: data})
}

func writeError(err error) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(Envelope{
		Status: "error",
		Error:  &ErrorBody{Code: errorCode(err), Message: err.Error()},
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, domain.ErrEmbeddingProvider):
		return "embedding_provider_error"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return "confirmation_required"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNoContent):
		return "no_content"
	case errors.Is(err, domain.ErrStorageEngine):
		return "storage_engine_error"
	default:
		return "internal"
	}
}

func fprintTable(rows [][]string) {
	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			fmt.Printf("%-*s", widths[i]+2, cell)
		}
		fmt.Println()
	}
}
