package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/ihex"
	"github.com/fwtools/hexforge/pkg/memory"
	"github.com/fwtools/hexforge/pkg/merge"
	"github.com/fwtools/hexforge/pkg/search"
)

// Server holds the API server state
type Server struct {
	registry *Registry
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server
func NewServer(registry *Registry, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		registry: registry,
		config:   config,
		metrics:  metrics,
	}
}

// reject records and sends a domain error
func (s *Server) reject(w http.ResponseWriter, err error) {
	s.metrics.RecordInputError(errorKind(err))
	sendDomainError(w, err)
}

// imageFromRequest resolves the {id} URL parameter to a registered
// image. It has already written the error response when ok is false.
func (s *Server) imageFromRequest(w http.ResponseWriter, r *http.Request) (*ksuid.KSUID, *firmware.Image, bool) {
	raw := chi.URLParam(r, "id")
	id, err := ksuid.Parse(raw)
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid image id %q", raw), http.StatusBadRequest)
		return nil, nil, false
	}
	im, err := s.registry.Read(&id)
	if err != nil {
		s.reject(w, err)
		return nil, nil, false
	}
	return &id, im, true
}

// queryUint32 parses an optional unsigned query parameter. 0x prefixes
// are accepted.
func queryUint32(r *http.Request, name string, def uint32) (uint32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint32(v), nil
}

// queryByte parses an optional byte-valued query parameter
func queryByte(r *http.Request, name string, def byte) (byte, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return byte(v), nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// handleHealth reports liveness and the registry size
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status": "healthy",
		"images": s.registry.Len(),
	})
}

// handleUpload decodes the request body into a new registered image.
// The format query parameter (auto, hex, bin) selects the decoder;
// base places raw binary data.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := s.config.MaxImageBytes
	if limit <= 0 {
		limit = 64 << 20
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(limit)))
	if err != nil {
		s.metrics.RecordImageOperation("upload", false, time.Since(start))
		sendError(w, fmt.Sprintf("Upload exceeds %d bytes or could not be read", limit), http.StatusRequestEntityTooLarge)
		return
	}

	format, err := firmware.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.metrics.RecordImageOperation("upload", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	base, err := queryUint32(r, "base", 0)
	if err != nil {
		s.metrics.RecordImageOperation("upload", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	im, err := firmware.Load(body, format, base)
	if err != nil {
		s.metrics.RecordImageOperation("upload", false, time.Since(start))
		s.reject(w, err)
		return
	}

	id, err := s.registry.Create(im)
	if err != nil {
		s.metrics.RecordImageOperation("upload", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.UpdateRegistryStats(s.registry.Len(), s.registry.Bytes())
	s.metrics.RecordImageOperation("upload", true, time.Since(start))
	sendSuccess(w, ImageSummary{ID: id.String(), Stats: im.Stats()})
}

// handleList returns every registered image with its statistics
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.List()
	out := make([]ImageSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, ImageSummary{ID: e.ID.String(), Stats: e.Image.Stats()})
	}
	sendSuccess(w, out)
}

// handleGetImage returns one image's statistics
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, im, ok := s.imageFromRequest(w, r)
	if !ok {
		return
	}
	sendSuccess(w, ImageSummary{ID: id.String(), Stats: im.Stats()})
}

// handleDeleteImage removes an image from the registry
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, _, ok := s.imageFromRequest(w, r)
	if !ok {
		s.metrics.RecordImageOperation("delete", false, time.Since(start))
		return
	}

	if err := s.registry.Delete(id); err != nil {
		s.metrics.RecordImageOperation("delete", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.UpdateRegistryStats(s.registry.Len(), s.registry.Bytes())
	s.metrics.RecordImageOperation("delete", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": "Image deleted"})
}

// handleHex downloads an image as Intel HEX text. record_length
// overrides the configured default payload size.
func (s *Server) handleHex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, im, ok := s.imageFromRequest(w, r)
	if !ok {
		return
	}

	recordLength, err := queryInt(r, "record_length", s.config.RecordLength)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := im.EncodeHex(recordLength)
	if err != nil {
		s.metrics.RecordImageOperation("encode_hex", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.RecordImageOperation("encode_hex", true, time.Since(start))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write(out); err != nil {
		sendError(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// handleBin downloads an image as a dense binary blob. fill overrides
// the configured gap byte; first and last, given together, bound the
// dumped range.
func (s *Server) handleBin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, im, ok := s.imageFromRequest(w, r)
	if !ok {
		return
	}

	fill, err := queryByte(r, "fill", s.config.GapFill)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	firstRaw := r.URL.Query().Get("first")
	lastRaw := r.URL.Query().Get("last")
	if (firstRaw == "") != (lastRaw == "") {
		sendError(w, "first and last must be given together", http.StatusBadRequest)
		return
	}
	var rng *memory.Range
	if firstRaw != "" {
		first, err := queryUint32(r, "first", 0)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		last, err := queryUint32(r, "last", 0)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		rng = &memory.Range{First: first, Last: last}
	}

	out, err := im.EncodeBinary(rng, fill)
	if err != nil {
		s.metrics.RecordImageOperation("encode_bin", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.RecordImageOperation("encode_bin", true, time.Since(start))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(out); err != nil {
		sendError(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// handleRelocate registers a shifted copy of an image and returns the
// new id. The body carries either a signed delta or a target base.
func (s *Server) handleRelocate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, im, ok := s.imageFromRequest(w, r)
	if !ok {
		return
	}

	var req RelocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if (req.Delta == nil) == (req.Base == nil) {
		sendError(w, "Exactly one of delta and base must be set", http.StatusBadRequest)
		return
	}

	var (
		moved *memory.Space
		err   error
	)
	if req.Delta != nil {
		moved, err = im.Space.Relocate(*req.Delta)
	} else {
		moved, err = firmware.RelocateToBase(im.Space, *req.Base)
	}
	if err != nil {
		s.metrics.RecordImageOperation("relocate", false, time.Since(start))
		s.reject(w, err)
		return
	}

	out := &firmware.Image{Space: moved, Start: im.Start, Format: im.Format}
	id, err := s.registry.Create(out)
	if err != nil {
		s.metrics.RecordImageOperation("relocate", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.UpdateRegistryStats(s.registry.Len(), s.registry.Bytes())
	s.metrics.RecordImageOperation("relocate", true, time.Since(start))
	sendSuccess(w, ImageSummary{ID: id.String(), Stats: out.Stats()})
}

// handleMerge combines registered images into a new one. The result
// carries the start metadata and format of the first source that has
// them.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if len(req.Sources) == 0 {
		sendError(w, "At least one source is required", http.StatusBadRequest)
		return
	}

	policy := merge.LastWins
	if req.Policy != "" {
		var err error
		policy, err = merge.ParsePolicy(req.Policy)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sources := make([]merge.Source, 0, len(req.Sources))
	var entry *ihex.Start
	format := firmware.FormatUnknown
	for _, ref := range req.Sources {
		id, err := ksuid.Parse(ref.ID)
		if err != nil {
			sendError(w, fmt.Sprintf("Invalid image id %q", ref.ID), http.StatusBadRequest)
			return
		}
		im, err := s.registry.Read(&id)
		if err != nil {
			s.metrics.RecordImageOperation("merge", false, time.Since(start))
			s.reject(w, err)
			return
		}
		if entry == nil {
			entry = im.Start
		}
		if format == firmware.FormatUnknown {
			format = im.Format
		}
		sources = append(sources, merge.Source{Space: im.Space, Offset: ref.Offset})
	}

	merged, err := merge.Merge(sources, merge.WithPolicy(policy))
	if err != nil {
		s.metrics.RecordImageOperation("merge", false, time.Since(start))
		s.reject(w, err)
		return
	}

	out := &firmware.Image{Space: merged, Start: entry, Format: format}
	id, err := s.registry.Create(out)
	if err != nil {
		s.metrics.RecordImageOperation("merge", false, time.Since(start))
		s.reject(w, err)
		return
	}

	s.metrics.UpdateRegistryStats(s.registry.Len(), s.registry.Bytes())
	s.metrics.RecordImageOperation("merge", true, time.Since(start))
	sendSuccess(w, ImageSummary{ID: id.String(), Stats: out.Stats()})
}

// handleSearch runs a pattern search over one image
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, im, ok := s.imageFromRequest(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	kind, err := search.ParseKind(req.Kind)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := search.Run(im.Space, search.Query{Kind: kind, Pattern: req.Pattern})
	if err != nil {
		s.metrics.RecordImageOperation("search", false, time.Since(start))
		s.reject(w, err)
		return
	}
	defer it.Close()

	matches := []search.Match{}
	for it.Next() {
		matches = append(matches, it.Match())
	}

	s.metrics.RecordImageOperation("search", true, time.Since(start))
	sendSuccess(w, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}
