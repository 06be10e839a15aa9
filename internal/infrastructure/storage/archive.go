// Package storage archives finished report exports in S3-compatible object storage
// and hands out time-limited download links for them.
package storage

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyKey is returned for operations on an empty object key
var ErrEmptyKey = errors.New("storage key is required")

// DefaultLinkExpiry is used when a caller asks for a link without an expiry
const DefaultLinkExpiry = 15 * time.Minute

// ArchivedObject describes a stored export
type ArchivedObject struct {
	Key         string    `json:"key"`
	Size        int       `json:"size"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

// ArchiveKey builds the object key of an export: <prefix>/<yyyy>/<mm>/<dd>/<uuid>/<filename>.
// The uuid keeps repeated exports of the same view apart.
func ArchiveKey(prefix, filename string, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	parts := []string{now.UTC().Format("2006/01/02"), uuid.NewString(), path.Base(filename)}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return path.Join(parts...)
}
