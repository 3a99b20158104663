package domain

import "context"

// StorageMedium is a flat string key/value store, the same shape as browser
// local storage.
type StorageMedium interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Entries(ctx context.Context) ([]StorageEntry, error)
}

type StorageEntry struct {
	Key   string
	Value string
}

// DocumentPersistence loads and saves the whole record document. Load returns
// a nil document when nothing usable is stored.
type DocumentPersistence interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}
