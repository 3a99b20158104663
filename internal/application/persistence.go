package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
)

var (
	ErrNotPersisted = errors.New("document was not persisted")
	ErrNotObject    = errors.New("stored document is not an object")
)

// GuardedPersistence keeps the whole document as one JSON entry behind the
// storage guard.
type GuardedPersistence struct {
	guard *sanitize.Guard
	key   string
}

func NewGuardedPersistence(guard *sanitize.Guard, key string) *GuardedPersistence {
	return &GuardedPersistence{guard: guard, key: key}
}

// Load returns nil without error when the key is absent.
func (p *GuardedPersistence) Load(ctx context.Context) (*domain.Document, error) {
	raw, ok := p.guard.Get(ctx, p.key)
	if !ok {
		return nil, nil
	}

	value, err := sanitize.SafeParse(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, ErrNotObject
	}

	clean, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("re-encode stored document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return &doc, nil
}

func (p *GuardedPersistence) Save(ctx context.Context, doc *domain.Document) error {
	if !p.guard.SafeSet(ctx, p.key, doc) {
		return ErrNotPersisted
	}
	return nil
}

var _ domain.DocumentPersistence = (*GuardedPersistence)(nil)
