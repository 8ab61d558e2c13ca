// Package substrate provides the key-value persistence the chat history
// store is built on. Each named key holds one serialized blob; there are no
// partial-key updates, every write replaces the whole value.
package substrate

import "context"

// Substrate is a synchronous single-key blob store.
type Substrate interface {
	// Get returns the blob stored under key. The second return reports
	// whether the key exists at all.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set overwrites the entire blob under key.
	Set(ctx context.Context, key string, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
