package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryExportArchive keeps exports in process memory. It backs local development and tests;
// its links point at BaseURL and are not signed.
type MemoryExportArchive struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	content     []byte
	contentType string
}

// NewMemoryExportArchive creates an empty archive
func NewMemoryExportArchive(baseURL string) *MemoryExportArchive {
	return &MemoryExportArchive{BaseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]memoryObject)}
}

// Store keeps a copy of content
func (m *MemoryExportArchive) Store(_ context.Context, filename string, content []byte, contentType string) (*ArchivedObject, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyKey
	}
	now := time.Now()
	key := ArchiveKey("", filename, now)
	buf := make([]byte, len(content))
	copy(buf, content)

	m.mu.Lock()
	m.objects[key] = memoryObject{content: buf, contentType: contentType}
	m.mu.Unlock()
	return &ArchivedObject{Key: key, Size: len(content), ContentType: contentType, StoredAt: now}, nil
}

// DownloadURL returns BaseURL/<key>?expires=<RFC3339>
func (m *MemoryExportArchive) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = DefaultLinkExpiry
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return m.BaseURL + "/" + key + "?" + q.Encode(), expiresAt, nil
}

// Get returns a stored export
func (m *MemoryExportArchive) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.content, obj.contentType, ok
}

// Delete forgets key
func (m *MemoryExportArchive) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored exports
func (m *MemoryExportArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
