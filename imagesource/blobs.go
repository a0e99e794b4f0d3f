package imagesource

import (
	"fmt"
	"sync"

	"github.com/ByLCY/memeforge/logging"
)

const blobScheme = "blob:"

// Blobs 保存上传文件的内存句柄，对应浏览器中的 object URL。
type Blobs struct {
	mu  sync.Mutex
	seq int
	m   map[string][]byte
}

// NewBlobs returns an empty registry.
func NewBlobs() *Blobs { return &Blobs{m: map[string][]byte{}} }

// Create stores data and returns a new blob: handle for it.
func (b *Blobs) Create(data []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	key := fmt.Sprintf("%smemeforge/upload-%d", blobScheme, b.seq)
	b.m[key] = data
	return key
}

// Get returns the bytes behind a live handle.
func (b *Blobs) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.m[key]
	return data, ok
}

// Revoke frees a handle. Revoking an unknown handle is a no-op.
func (b *Blobs) Revoke(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.m[key]; ok {
		delete(b.m, key)
		logging.Logger().Debug("upload handle released", "key", key)
	}
}

// Len returns the number of live handles.
func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

// UploadSlot owns at most one live upload handle. Replacing the upload
// releases the previous handle.
type UploadSlot struct {
	blobs   *Blobs
	current string
}

// NewUploadSlot creates a slot backed by blobs.
func NewUploadSlot(blobs *Blobs) *UploadSlot { return &UploadSlot{blobs: blobs} }

// Replace stores data as the slot's upload and returns its handle.
func (s *UploadSlot) Replace(data []byte) string {
	s.Release()
	s.current = s.blobs.Create(data)
	return s.current
}

// Current returns the live handle, or "" when the slot is empty.
func (s *UploadSlot) Current() string { return s.current }

// Release frees the current handle, if any.
func (s *UploadSlot) Release() {
	if s.current == "" {
		return
	}
	s.blobs.Revoke(s.current)
	s.current = ""
}
