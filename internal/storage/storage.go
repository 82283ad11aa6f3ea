// Package storage holds the document blob store: pluggable object
// backends wrapped with at-rest encryption.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned when no blob exists for a key. Callers
// treat it as normal absence rather than a fault.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines common object operations across backends.
// Payloads are whole byte slices; documents are small enough that no
// streaming is needed.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// DocumentKey is the storage address of a document's blob.
func DocumentKey(documentID int) string {
	return fmt.Sprintf("%d.enc", documentID)
}
