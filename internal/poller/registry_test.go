package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileFromEmpty(t *testing.T) {
	store := NewStateStore()
	r := NewRegistry(store)

	added, removed := r.Reconcile([]string{"a", "b", "c", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, added)
	assert.Empty(t, removed)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.Names())
	assert.Equal(t, 4, store.Len())
}

func TestReconcileAddRemoveDelta(t *testing.T) {
	store := NewStateStore()
	r := NewRegistry(store)
	r.Reconcile([]string{"a", "b", "c", "d"})

	// Give surviving points some accumulated state.
	require.True(t, store.ApplyChange("b", 7, time.Now()))
	store.RecordFailure("c")
	store.RecordFailure("c")

	added, removed := r.Reconcile([]string{"b", "c", "d", "e"})
	assert.Equal(t, []string{"e"}, added)
	assert.Equal(t, []string{"a"}, removed)
	assert.Equal(t, []string{"b", "c", "d", "e"}, r.Names())

	// Surviving state untouched.
	b, ok := store.Get("b")
	require.True(t, ok)
	assert.True(t, b.HasValue)
	assert.Equal(t, 7, b.LastValue)

	c, ok := store.Get("c")
	require.True(t, ok)
	assert.Equal(t, uint(2), c.ConsecutiveErrors)

	// New point starts unset; removed point is gone.
	e, ok := store.Get("e")
	require.True(t, ok)
	assert.False(t, e.HasValue)
	_, ok = store.Get("a")
	assert.False(t, ok)
}

func TestReconcileIdempotent(t *testing.T) {
	store := NewStateStore()
	r := NewRegistry(store)
	r.Reconcile([]string{"a", "b"})
	require.True(t, store.ApplyChange("a", 1, time.Now()))
	store.RecordFailure("b")

	added, removed := r.Reconcile([]string{"a", "b"})
	assert.Empty(t, added)
	assert.Empty(t, removed)

	a, _ := store.Get("a")
	assert.Equal(t, 1, a.LastValue)
	b, _ := store.Get("b")
	assert.Equal(t, uint(1), b.ConsecutiveErrors)
}

func TestReconcilePreservesOrder(t *testing.T) {
	store := NewStateStore()
	r := NewRegistry(store)
	r.Reconcile([]string{"z", "a", "m"})
	assert.Equal(t, []string{"z", "a", "m"}, r.Names(), "the source order is the poll order")

	r.Reconcile([]string{"a", "z"})
	assert.Equal(t, []string{"a", "z"}, r.Names())
}

func TestRegistryStoreBijection(t *testing.T) {
	store := NewStateStore()
	r := NewRegistry(store)

	sets := [][]string{
		{"a", "b", "c"},
		{"c", "d"},
		{"d"},
		{"a", "b", "c", "d", "e"},
	}
	for _, set := range sets {
		r.Reconcile(set)
		require.Equal(t, len(set), r.Len())
		require.Equal(t, len(set), store.Len())
		for _, name := range set {
			_, ok := store.Get(name)
			require.True(t, ok, "state entry missing for %s", name)
			require.True(t, r.Contains(name))
		}
	}
}
