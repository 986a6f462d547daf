package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/ihex"
	"github.com/fwtools/hexforge/pkg/memory"
	"github.com/fwtools/hexforge/pkg/merge"
	"github.com/fwtools/hexforge/pkg/rawbin"
	"github.com/fwtools/hexforge/pkg/search"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if apiKey != expectedKey {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// sendDomainError maps a core error to its HTTP status and sends it
func sendDomainError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), statusForError(err))
}

// statusForError is the error taxonomy of the service: corrupt or
// invalid input is 400, an unknown id 404, an unsupported encoding
// 415, exceeding a capacity 413 and a request that is well formed but
// cannot be satisfied by the data 422.
func statusForError(err error) int {
	var (
		malformed   *ihex.MalformedRecordError
		checksum    *ihex.ChecksumError
		unsupported *ihex.UnsupportedTypeError
		missingEOF  *ihex.MissingEOFError
		recLen      *ihex.RecordLengthError
		badPattern  *search.BadPatternError
		notFound    *NotFoundError
		full        *RegistryFullError
		format      *firmware.UnsupportedFormatError
		overflow    *memory.AddressOverflowError
		conflict    *merge.ConflictError
		emptyRange  *rawbin.EmptyRangeError
	)
	switch {
	case errors.As(err, &malformed),
		errors.As(err, &checksum),
		errors.As(err, &unsupported),
		errors.As(err, &missingEOF),
		errors.As(err, &recLen),
		errors.As(err, &badPattern):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &full):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &format):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &overflow),
		errors.As(err, &conflict),
		errors.As(err, &emptyRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorKind labels a core error for metrics
func errorKind(err error) string {
	var (
		malformed   *ihex.MalformedRecordError
		checksum    *ihex.ChecksumError
		unsupported *ihex.UnsupportedTypeError
		missingEOF  *ihex.MissingEOFError
		recLen      *ihex.RecordLengthError
		badPattern  *search.BadPatternError
		notFound    *NotFoundError
		full        *RegistryFullError
		format      *firmware.UnsupportedFormatError
		overflow    *memory.AddressOverflowError
		conflict    *merge.ConflictError
		emptyRange  *rawbin.EmptyRangeError
	)
	switch {
	case errors.As(err, &malformed):
		return "malformed_record"
	case errors.As(err, &checksum):
		return "checksum_mismatch"
	case errors.As(err, &unsupported):
		return "unsupported_type"
	case errors.As(err, &missingEOF):
		return "missing_eof"
	case errors.As(err, &recLen):
		return "record_length"
	case errors.As(err, &badPattern):
		return "bad_pattern"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &full):
		return "registry_full"
	case errors.As(err, &format):
		return "unsupported_format"
	case errors.As(err, &overflow):
		return "address_overflow"
	case errors.As(err, &conflict):
		return "merge_conflict"
	case errors.As(err, &emptyRange):
		return "empty_range"
	default:
		return "other"
	}
}
