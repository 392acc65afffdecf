package dedupe

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcceptThreshold(t *testing.T) {
	store := NewStore()

	// First two occurrences at one origin pass, the third is suppressed.
	assert.True(t, store.TryAccept("https://a.test", "SECRET123456789", 2))
	assert.True(t, store.TryAccept("https://a.test", "SECRET123456789", 2))
	assert.False(t, store.TryAccept("https://a.test", "SECRET123456789", 2))
	assert.Equal(t, 2, store.CurrentCount("https://a.test", "SECRET123456789"))

	// A different origin counts independently.
	assert.True(t, store.TryAccept("https://b.test", "SECRET123456789", 2))
	assert.Equal(t, 1, store.CurrentCount("https://b.test", "SECRET123456789"))

	// Other values at the suppressed origin are unaffected.
	assert.True(t, store.TryAccept("https://a.test", "OTHERVALUE", 2))
}

func TestCurrentCountUnknownPair(t *testing.T) {
	store := NewStore()
	assert.Equal(t, 0, store.CurrentCount("https://a.test", "never seen"))
}

func TestMergeExternalCountKeepsMax(t *testing.T) {
	store := NewStore()
	require.True(t, store.TryAccept("https://a.test", "value", 10))
	require.True(t, store.TryAccept("https://a.test", "value", 10))

	store.MergeExternalCount("https://a.test", "value", 1)
	assert.Equal(t, 2, store.CurrentCount("https://a.test", "value"), "smaller external count must not lower the counter")

	store.MergeExternalCount("https://a.test", "value", 7)
	assert.Equal(t, 7, store.CurrentCount("https://a.test", "value"))
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore()
	require.True(t, store.TryAccept("https://a.test", "first", 3))
	require.True(t, store.TryAccept("https://a.test", "first", 3))
	require.True(t, store.TryAccept("https://b.test", "second", 3))

	restored := NewStore()
	restored.Import(store.Export())

	// Subsequent accept decisions are identical on both stores.
	assert.Equal(t, store.CurrentCount("https://a.test", "first"), restored.CurrentCount("https://a.test", "first"))
	assert.Equal(t, store.CurrentCount("https://b.test", "second"), restored.CurrentCount("https://b.test", "second"))
	assert.Equal(t, store.TryAccept("https://a.test", "first", 3), restored.TryAccept("https://a.test", "first", 3))
	assert.Equal(t, store.TryAccept("https://a.test", "first", 3), restored.TryAccept("https://a.test", "first", 3))
}

func TestExportReturnsCopy(t *testing.T) {
	store := NewStore()
	require.True(t, store.TryAccept("https://a.test", "value", 5))

	exported := store.Export()
	exported["https://a.test"]["value"] = 99

	assert.Equal(t, 1, store.CurrentCount("https://a.test", "value"), "mutating an export must not affect the store")
}

func TestReset(t *testing.T) {
	store := NewStore()
	require.True(t, store.TryAccept("https://a.test", "value", 1))
	require.False(t, store.TryAccept("https://a.test", "value", 1))

	store.Reset()

	assert.Equal(t, 0, store.CurrentCount("https://a.test", "value"))
	assert.True(t, store.TryAccept("https://a.test", "value", 1))
}

func TestTryAcceptConcurrent(t *testing.T) {
	store := NewStore()
	const threshold = 5
	const workers = 25

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.TryAccept("https://a.test", "value", threshold) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(threshold), accepted.Load(), "racing accepts must never exceed the threshold")
	assert.Equal(t, threshold, store.CurrentCount("https://a.test", "value"))
}
