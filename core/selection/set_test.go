package selection

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/adapters/storage"
	"storefront/core/types"
)

func snap(name, price string) types.Snapshot {
	return types.Snapshot{Name: name, Price: decimal.RequireFromString(price), Image: "images/" + name + ".jpg"}
}

func openSet(t *testing.T, store storage.Store, key string) *Set {
	t.Helper()
	s, err := Open(context.Background(), store, key)
	require.NoError(t, err)
	return s
}

// TestToggleIsInvolution checks that two toggles restore membership
func TestToggleIsInvolution(t *testing.T) {
	ctx := context.Background()
	s := openSet(t, storage.NewMemoryStore(), KeyWishlist)

	member, err := s.Toggle(ctx, "mon1", snap("monitor", "199.99"))
	require.NoError(t, err)
	assert.True(t, member)
	assert.True(t, s.Contains("mon1"))

	member, err = s.Toggle(ctx, "mon1", snap("monitor", "199.99"))
	require.NoError(t, err)
	assert.False(t, member)
	assert.False(t, s.Contains("mon1"))
	assert.Equal(t, 0, s.Len())
}

func TestAllIsOrderedAndRestartable(t *testing.T) {
	ctx := context.Background()
	s := openSet(t, storage.NewMemoryStore(), KeyPeripherals)
	for _, id := range []string{"spk1", "kb1", "mon2"} {
		_, err := s.Toggle(ctx, id, snap(id, "1"))
		require.NoError(t, err)
	}

	collect := func() []string {
		var ids []string
		for id := range s.All() {
			ids = append(ids, id)
		}
		return ids
	}
	assert.Equal(t, []string{"kb1", "mon2", "spk1"}, collect())
	assert.Equal(t, collect(), collect())

	// stopping early is allowed
	for id := range s.All() {
		assert.Equal(t, "kb1", id)
		break
	}
}

func TestTotal(t *testing.T) {
	ctx := context.Background()
	s := openSet(t, storage.NewMemoryStore(), KeyPeripherals)

	_, err := s.Toggle(ctx, "mon1", snap("monitor", "199.99"))
	require.NoError(t, err)
	_, err = s.Toggle(ctx, "kb2", snap("keyboard", "129.99"))
	require.NoError(t, err)
	_, err = s.Toggle(ctx, "hs1", snap("headset", "69.99"))
	require.NoError(t, err)

	assert.Equal(t, "399.97", s.Total().StringFixed(2))
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	s := openSet(t, store, KeyWishlist)
	_, err := s.Toggle(ctx, "mouse2", snap("mouse", "79.99"))
	require.NoError(t, err)
	_, err = s.Toggle(ctx, "hs2", snap("headset", "149.99"))
	require.NoError(t, err)

	reopened := openSet(t, store, KeyWishlist)
	assert.Equal(t, s.IDs(), reopened.IDs())
	for id, want := range s.All() {
		got, ok := reopened.Get(id)
		require.True(t, ok)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Image, got.Image)
		assert.True(t, want.Price.Equal(got.Price))
	}
}

func TestSetsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	wishlist := openSet(t, store, KeyWishlist)
	marks := openSet(t, store, KeyBuildMarks)

	_, err := wishlist.Toggle(ctx, "1", snap("cpu", "599.99"))
	require.NoError(t, err)

	assert.False(t, marks.Contains("1"))
	assert.False(t, openSet(t, store, KeyBuildMarks).Contains("1"))
}

func TestOpenMigratesBareIDs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyBuildMarks, `["1","7",3,"1",""]`))

	s := openSet(t, store, KeyBuildMarks)
	assert.Equal(t, []string{"1", "3", "7"}, s.IDs())

	raw, _, err := store.Get(ctx, KeyBuildMarks)
	require.NoError(t, err)
	res, err := Decode(raw)
	require.NoError(t, err)
	assert.False(t, res.NeedsRewrite(), "rewritten in canonical shape")
}

func TestOpenMigratesProductObjects(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	legacy := `[{"id":"mon1","name":"Gaming Monitor 24\" 144Hz","price":199.99,"image":"images/monitor-1.jpg","category":"monitors","specs":"1920x1080"}]`
	require.NoError(t, store.Set(ctx, KeyWishlist, legacy))

	s := openSet(t, store, KeyWishlist)
	got, ok := s.Get("mon1")
	require.True(t, ok)
	assert.Equal(t, `Gaming Monitor 24" 144Hz`, got.Name)
	assert.Equal(t, "199.99", got.Price.String())
	assert.Equal(t, "images/monitor-1.jpg", got.Image)
}

func TestOpenDiscardsMalformedState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyWishlist, `{"mon1":true}`))

	s := openSet(t, store, KeyWishlist)
	assert.Equal(t, 0, s.Len())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := openSet(t, store, KeyPeripherals)
	_, err := s.Toggle(ctx, "kb1", snap("keyboard", "89.99"))
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, openSet(t, store, KeyPeripherals).Len())
}

func TestToggleRejectsEmptyID(t *testing.T) {
	s := openSet(t, storage.NewMemoryStore(), KeyWishlist)
	_, err := s.Toggle(context.Background(), "", types.Snapshot{})
	assert.Error(t, err)
}
