package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
	"go.uber.org/zap"
)

const (
	prefixApplication = "app"
	prefixAsset       = "asset"
	prefixDiagram     = "diag"
	prefixConnection  = "conn"
	prefixZone        = "zone"

	base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// RecordStore owns the inventory document. Every mutation stamps the record,
// updates lastModified and persists the whole document. A failed save is
// logged and the in-memory state stays authoritative.
type RecordStore struct {
	mu          sync.Mutex
	persistence domain.DocumentPersistence
	logger      *zap.Logger
	now         func() time.Time
	suffix      func() string
	doc         *domain.Document
	persisted   bool
}

type Option func(*RecordStore)

func WithLogger(logger *zap.Logger) Option {
	return func(s *RecordStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRecordStore(persistence domain.DocumentPersistence, opts ...Option) *RecordStore {
	s := &RecordStore{
		persistence: persistence,
		logger:      zap.NewNop(),
		now:         time.Now,
		suffix:      randomSuffix,
		persisted:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.doc = domain.NewDocument(s.timestamp())
	return s
}

// Load replaces the in-memory document with the persisted one, or with a
// fresh document when nothing usable is stored. Missing collections are
// recreated and unknown enum values are mapped to their defaults.
func (s *RecordStore) Load(ctx context.Context) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.persistence.Load(ctx)
	if err != nil {
		s.logger.Warn("stored inventory unreadable, starting fresh", zap.Error(err))
		doc = nil
	}
	if doc == nil {
		doc = domain.NewDocument(s.timestamp())
	}
	if healed := doc.Heal(); len(healed) > 0 {
		s.logger.Info("inventory collections recreated", zap.Strings("collections", healed))
	}
	if doc.Metadata.CreatedAt.IsZero() {
		doc.Metadata.CreatedAt = s.timestamp()
	}
	normalizeDocument(doc)

	s.doc = doc
	return cloneDocument(s.doc)
}

// Save writes the document and reports whether it was persisted.
func (s *RecordStore) Save(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *RecordStore) saveLocked(ctx context.Context) bool {
	if err := s.persistence.Save(ctx, s.doc); err != nil {
		s.logger.Warn("inventory not persisted, keeping in-memory state", zap.Error(err))
		s.persisted = false
		return false
	}
	s.persisted = true
	return true
}

// Persisted reports whether the last write reached storage. It is true
// until the first failed write.
func (s *RecordStore) Persisted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// commit stamps lastModified and persists. Callers hold the lock.
func (s *RecordStore) commit(ctx context.Context, at time.Time) {
	s.doc.Metadata.LastModified = at
	s.saveLocked(ctx)
}

func (s *RecordStore) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDocument(s.doc)
}

func (s *RecordStore) Metadata() domain.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Metadata
}

func (s *RecordStore) SetOrgName(ctx context.Context, name string) domain.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Metadata.OrgName = clip(name)
	s.commit(ctx, s.timestamp())
	return s.doc.Metadata
}

func (s *RecordStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *RecordStore) newID(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, at.UnixMilli(), s.suffix())
}

func randomSuffix() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}

func normalizeDocument(doc *domain.Document) {
	for i := range doc.Applications {
		a := &doc.Applications[i]
		a.AssetCategory = a.AssetCategory.OrDefault()
		a.Environment = a.Environment.OrDefault()
		a.CUITypes = nonNil(a.CUITypes)
		a.Tags = nonNil(a.Tags)
	}
	for i := range doc.Assets {
		a := &doc.Assets[i]
		a.AssetType = a.AssetType.OrDefault()
		a.ScopeCategory = a.ScopeCategory.OrDefault()
		if a.Quantity < 1 {
			a.Quantity = 1
		}
		a.Tags = nonNil(a.Tags)
	}
	for i := range doc.Diagrams {
		d := &doc.Diagrams[i]
		d.Type = d.Type.OrDefault()
		d.Source = d.Source.OrDefault()
		if d.ApplicationID == "" {
			d.ApplicationID = domain.GlobalApplicationID
		}
		d.AssetCategories = normalizeCategories(d.AssetCategories)
		d.ScopedAssets = nonNil(d.ScopedAssets)
		d.SecurityZones = nonNil(d.SecurityZones)
		d.RelatedControls = nonNil(d.RelatedControls)
	}
	for i := range doc.Connections {
		c := &doc.Connections[i]
		c.Direction = c.Direction.OrDefault()
	}
	for i := range doc.Zones {
		z := &doc.Zones[i]
		z.Type = z.Type.OrDefault()
		z.ApplicationIDs = nonNil(z.ApplicationIDs)
	}
}

func normalizeCategories(in []domain.AssetCategory) []domain.AssetCategory {
	out := make([]domain.AssetCategory, 0, len(in))
	seen := make(map[domain.AssetCategory]bool, len(in))
	for _, c := range in {
		c = c.OrDefault()
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// clip is the last length guard for short free-text fields.
func clip(value string) string {
	return sanitize.EnforceMaxLength(strings.TrimSpace(value), sanitize.DefaultMaxLength)
}

func clipAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = clip(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	return input
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	return nil
}
