package sanitize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/adapters/memory"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type brokenMedium struct {
	*memory.Medium
	failSet     bool
	failEntries bool
}

func (b *brokenMedium) Set(ctx context.Context, key, value string) error {
	if b.failSet {
		return errors.New("quota exceeded")
	}
	return b.Medium.Set(ctx, key, value)
}

func (b *brokenMedium) Entries(ctx context.Context) ([]domain.StorageEntry, error) {
	if b.failEntries {
		return nil, errors.New("storage disabled")
	}
	return b.Medium.Entries(ctx)
}

func newBroken() *brokenMedium {
	return &brokenMedium{Medium: memory.NewMedium()}
}

func TestEntrySizeCountsUTF16Units(t *testing.T) {
	assert.Equal(t, int64(8), EntrySize("ab", "cd"))
	assert.Equal(t, int64(4), EntrySize("é", "ü"))
	// outside the BMP a character is a surrogate pair
	assert.Equal(t, int64(6), EntrySize("k", "😀"))
}

func TestGuardUsageBytes(t *testing.T) {
	ctx := context.Background()
	medium := memory.NewMedium()
	require.NoError(t, medium.Set(ctx, "a", "1234"))
	require.NoError(t, medium.Set(ctx, "bb", "56"))

	guard := NewGuard(medium, GuardConfig{})
	assert.Equal(t, int64((1+4+2+2)*2), guard.UsageBytes(ctx))
}

func TestGuardUsageBytesSurvivesBrokenMedium(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	medium := newBroken()
	medium.failEntries = true

	guard := NewGuard(medium, GuardConfig{Logger: zap.New(core)})
	assert.Equal(t, int64(0), guard.UsageBytes(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("storage usage unavailable").Len())
}

func TestGuardLimits(t *testing.T) {
	ctx := context.Background()
	medium := memory.NewMedium()
	guard := NewGuard(medium, GuardConfig{Limits: Limits{WarnBytes: 20, HardBytes: 40, MaxEntryBytes: 1000}})

	assert.False(t, guard.IsNearLimit(ctx))
	assert.False(t, guard.IsAtLimit(ctx))

	require.NoError(t, medium.Set(ctx, "k", strings.Repeat("v", 10))) // 22 bytes
	assert.True(t, guard.IsNearLimit(ctx))
	assert.False(t, guard.IsAtLimit(ctx))

	require.NoError(t, medium.Set(ctx, "j", strings.Repeat("v", 8))) // +18 = 40
	assert.True(t, guard.IsAtLimit(ctx))
}

func TestGuardDefaultLimits(t *testing.T) {
	guard := NewGuard(memory.NewMedium(), GuardConfig{Limits: Limits{WarnBytes: 10}})
	assert.Equal(t, Limits{WarnBytes: 10, HardBytes: DefaultHardBytes, MaxEntryBytes: DefaultMaxEntryBytes}, guard.Limits())
	assert.Equal(t, int64(3670016), DefaultWarnBytes)
	assert.Equal(t, int64(4718592), DefaultHardBytes)
}

func TestSafeSet(t *testing.T) {
	ctx := context.Background()

	t.Run("writes strings as-is", func(t *testing.T) {
		medium := memory.NewMedium()
		guard := NewGuard(medium, GuardConfig{})

		require.True(t, guard.SafeSet(ctx, "key", "value"))
		got, ok, err := medium.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "value", got)
	})

	t.Run("serializes other values to json", func(t *testing.T) {
		medium := memory.NewMedium()
		guard := NewGuard(medium, GuardConfig{})

		require.True(t, guard.SafeSet(ctx, "doc", map[string]any{"zones": []string{}}))
		got, _ := guard.Get(ctx, "doc")
		assert.JSONEq(t, `{"zones":[]}`, got)
	})

	t.Run("rejects entries over the per-entry ceiling", func(t *testing.T) {
		for _, n := range []int{512 * 1024, 600 * 1024, 2 * 1024 * 1024} {
			medium := memory.NewMedium()
			guard := NewGuard(medium, GuardConfig{})

			assert.False(t, guard.SafeSet(ctx, "k", strings.Repeat("x", n)))
			entries, err := medium.Entries(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries)
		}
	})

	t.Run("rejects writes once at the hard limit", func(t *testing.T) {
		medium := memory.NewMedium()
		require.NoError(t, medium.Set(ctx, "existing", strings.Repeat("x", 100)))
		guard := NewGuard(medium, GuardConfig{Limits: Limits{WarnBytes: 50, HardBytes: 100, MaxEntryBytes: 1000}})

		assert.False(t, guard.SafeSet(ctx, "new", "v"))
		_, ok, _ := medium.Get(ctx, "new")
		assert.False(t, ok)
	})

	t.Run("medium failure is reported as false", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		medium := newBroken()
		medium.failSet = true
		guard := NewGuard(medium, GuardConfig{Logger: zap.New(core)})

		assert.False(t, guard.SafeSet(ctx, "k", "v"))
		assert.Equal(t, 1, logs.FilterMessage("storage write failed").Len())
	})

	t.Run("unserializable values are rejected", func(t *testing.T) {
		guard := NewGuard(memory.NewMedium(), GuardConfig{})
		assert.False(t, guard.SafeSet(ctx, "k", map[string]any{"ch": make(chan int)}))
	})

	t.Run("warns after a write that crosses the warn threshold", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		guard := NewGuard(memory.NewMedium(), GuardConfig{
			Logger: zap.New(core),
			Limits: Limits{WarnBytes: 10, HardBytes: 1000, MaxEntryBytes: 1000},
		})

		assert.True(t, guard.SafeSet(ctx, "k", "0123456789"))
		assert.Equal(t, 1, logs.FilterMessage("storage nearing capacity").Len())
	})
}

func TestGuardMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	guard := NewGuard(memory.NewMedium(), GuardConfig{
		Metrics: metrics,
		Limits:  Limits{WarnBytes: 100, HardBytes: 200, MaxEntryBytes: 50},
	})

	assert.True(t, guard.SafeSet(ctx, "a", "b"))
	assert.False(t, guard.SafeSet(ctx, "big", strings.Repeat("x", 100)))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.writes.WithLabelValues(resultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.writes.WithLabelValues(resultEntryTooLarge)))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.usage))
}

func TestGuardGetAndRemove(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(memory.NewMedium(), GuardConfig{})

	_, ok := guard.Get(ctx, "missing")
	assert.False(t, ok)

	require.True(t, guard.SafeSet(ctx, "k", "v"))
	assert.True(t, guard.Remove(ctx, "k"))
	_, ok = guard.Get(ctx, "k")
	assert.False(t, ok)
}
