package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/fwtools/hexforge/pkg/firmware"
)

// NotFoundError reports an id with no registered image behind it
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image %s not found", e.ID)
}

// RegistryFullError reports that registering an image would exceed the
// registry's byte capacity
type RegistryFullError struct {
	Limit int
}

func (e *RegistryFullError) Error() string {
	return fmt.Sprintf("registry full: capacity %d bytes", e.Limit)
}

// Registry is the in-memory image store behind the API. Every entry is
// keyed by a ksuid. Stored images are treated as immutable: operations
// that change data register a new image, so concurrent reads need no
// additional locking beyond the registry's own.
type Registry struct {
	mu       sync.RWMutex
	images   map[ksuid.KSUID]*firmware.Image
	bytes    int
	maxBytes int // 0 means unlimited
}

// NewRegistry creates a registry holding at most maxBytes of image
// data; 0 means no cap.
func NewRegistry(maxBytes int) *Registry {
	return &Registry{
		images:   make(map[ksuid.KSUID]*firmware.Image),
		maxBytes: maxBytes,
	}
}

// Create registers an image and returns its new id.
func (r *Registry) Create(im *firmware.Image) (*ksuid.KSUID, error) {
	size := im.Space.Len()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxBytes > 0 && r.bytes+size > r.maxBytes {
		return nil, &RegistryFullError{Limit: r.maxBytes}
	}

	id := ksuid.New()
	r.images[id] = im
	r.bytes += size
	return &id, nil
}

// Read returns the image behind id.
func (r *Registry) Read(id *ksuid.KSUID) (*firmware.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	im, ok := r.images[*id]
	if !ok {
		return nil, &NotFoundError{ID: id.String()}
	}
	return im, nil
}

// Update replaces the image behind an existing id.
func (r *Registry) Update(id *ksuid.KSUID, im *firmware.Image) error {
	size := im.Space.Len()

	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.images[*id]
	if !ok {
		return &NotFoundError{ID: id.String()}
	}
	next := r.bytes - old.Space.Len() + size
	if r.maxBytes > 0 && next > r.maxBytes {
		return &RegistryFullError{Limit: r.maxBytes}
	}
	r.images[*id] = im
	r.bytes = next
	return nil
}

// Delete removes the image behind id.
func (r *Registry) Delete(id *ksuid.KSUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	im, ok := r.images[*id]
	if !ok {
		return &NotFoundError{ID: id.String()}
	}
	r.bytes -= im.Space.Len()
	delete(r.images, *id)
	return nil
}

// Entry is one registered image with its id.
type Entry struct {
	ID    ksuid.KSUID
	Image *firmware.Image
}

// List returns all entries ordered by id. KSUIDs sort by creation
// time, so the order is oldest first.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.images))
	for id, im := range r.images {
		out = append(out, Entry{ID: id, Image: im})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Len reports the number of registered images.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

// Bytes reports the total data bytes across registered images.
func (r *Registry) Bytes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytes
}

// Close drops every registered image.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = make(map[ksuid.KSUID]*firmware.Image)
	r.bytes = 0
	return nil
}
