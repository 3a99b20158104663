package sanitize

import (
	"context"
	"encoding/json"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"go.uber.org/zap"
)

const (
	mib = 1024 * 1024

	DefaultWarnBytes     int64 = 3.5 * mib
	DefaultHardBytes     int64 = 4.5 * mib
	DefaultMaxEntryBytes int64 = 1 * mib
)

// Limits are measured the way browser storage accounts for text: two bytes
// per UTF-16 code unit of key plus value.
type Limits struct {
	WarnBytes     int64
	HardBytes     int64
	MaxEntryBytes int64
}

func DefaultLimits() Limits {
	return Limits{WarnBytes: DefaultWarnBytes, HardBytes: DefaultHardBytes, MaxEntryBytes: DefaultMaxEntryBytes}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.WarnBytes <= 0 {
		l.WarnBytes = d.WarnBytes
	}
	if l.HardBytes <= 0 {
		l.HardBytes = d.HardBytes
	}
	if l.MaxEntryBytes <= 0 {
		l.MaxEntryBytes = d.MaxEntryBytes
	}
	return l
}

type GuardConfig struct {
	Limits  Limits
	Logger  *zap.Logger
	Metrics *Metrics
}

// Guard is the only sanctioned write path to a storage medium. None of its
// methods fail: every problem is logged and reported as false or zero.
type Guard struct {
	medium  domain.StorageMedium
	limits  Limits
	logger  *zap.Logger
	metrics *Metrics
}

func NewGuard(medium domain.StorageMedium, cfg GuardConfig) *Guard {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		medium:  medium,
		limits:  cfg.Limits.withDefaults(),
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

func (g *Guard) Limits() Limits {
	return g.limits
}

// UsageBytes sums the accounted size of every entry in the medium. It returns
// 0 when the medium cannot be read.
func (g *Guard) UsageBytes(ctx context.Context) int64 {
	entries, err := g.medium.Entries(ctx)
	if err != nil {
		g.logger.Error("storage usage unavailable", zap.Error(err))
		return 0
	}
	var total int64
	for _, entry := range entries {
		total += EntrySize(entry.Key, entry.Value)
	}
	g.metrics.observeUsage(total)
	return total
}

func (g *Guard) IsNearLimit(ctx context.Context) bool {
	return g.UsageBytes(ctx) > g.limits.WarnBytes
}

func (g *Guard) IsAtLimit(ctx context.Context) bool {
	return g.UsageBytes(ctx) >= g.limits.HardBytes
}

// SafeSet writes value under key. Strings are stored as-is, anything else is
// JSON encoded first. It returns false, without writing, when the entry is
// over the per-entry ceiling or the medium is already at the hard limit.
func (g *Guard) SafeSet(ctx context.Context, key string, value any) bool {
	text, ok := value.(string)
	if !ok {
		raw, err := json.Marshal(value)
		if err != nil {
			g.logger.Error("storage value not serializable", zap.String("key", key), zap.Error(err))
			g.metrics.write(resultEncodeError)
			return false
		}
		text = string(raw)
	}

	size := EntrySize(key, text)
	if size > g.limits.MaxEntryBytes {
		g.logger.Warn("storage entry too large",
			zap.String("key", key),
			zap.Float64("size_mib", toMiB(size)),
			zap.Float64("max_mib", toMiB(g.limits.MaxEntryBytes)),
		)
		g.metrics.write(resultEntryTooLarge)
		return false
	}

	if g.IsAtLimit(ctx) {
		g.logger.Warn("storage at capacity, write skipped", zap.String("key", key))
		g.metrics.write(resultAtLimit)
		return false
	}

	if err := g.medium.Set(ctx, key, text); err != nil {
		g.logger.Error("storage write failed", zap.String("key", key), zap.Error(err))
		g.metrics.write(resultMediumError)
		return false
	}
	g.metrics.write(resultOK)

	if usage := g.UsageBytes(ctx); usage > g.limits.WarnBytes {
		g.logger.Warn("storage nearing capacity", zap.Float64("usage_mib", toMiB(usage)))
	}
	return true
}

// Get reads key. A medium error is logged and treated as a missing key.
func (g *Guard) Get(ctx context.Context, key string) (string, bool) {
	value, ok, err := g.medium.Get(ctx, key)
	if err != nil {
		g.logger.Error("storage read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, ok
}

func (g *Guard) Remove(ctx context.Context, key string) bool {
	if err := g.medium.Remove(ctx, key); err != nil {
		g.logger.Error("storage remove failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// EntrySize is the accounted size of one key/value pair in bytes.
func EntrySize(key, value string) int64 {
	return (utf16Len(key) + utf16Len(value)) * 2
}

func utf16Len(s string) int64 {
	var n int64
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

func toMiB(n int64) float64 {
	return float64(n) / mib
}
