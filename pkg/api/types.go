package api

import "github.com/fwtools/hexforge/pkg/firmware"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ImageSummary pairs a registry id with the image's statistics
type ImageSummary struct {
	ID    string         `json:"id"`
	Stats firmware.Stats `json:"stats"`
}

// RelocateRequest asks for a shifted copy of an image. Exactly one of
// Delta and Base must be set
type RelocateRequest struct {
	Delta *int64  `json:"delta,omitempty"`
	Base  *uint32 `json:"base,omitempty"`
}

// MergeSourceRef names one merge input by registry id
type MergeSourceRef struct {
	ID     string `json:"id"`
	Offset int64  `json:"offset,omitempty"`
}

// MergeRequest combines registered images into a new one
type MergeRequest struct {
	Sources []MergeSourceRef `json:"sources"`
	Policy  string           `json:"policy,omitempty"`
}

// SearchRequest runs a pattern search over one image
type SearchRequest struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port          int
	Bind          string
	APIKey        string
	MaxImageBytes int      // Upload size cap and registry capacity
	CORSOrigins   []string // Allowed CORS origins, "*" for any
	GapFill       byte     // Default fill byte for binary downloads
	RecordLength  int      // Default Intel HEX payload length
}
