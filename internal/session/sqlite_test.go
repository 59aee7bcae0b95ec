package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	// Fresh store yields a zero session.
	sess, err := store.Session(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
	assert.False(t, sess.HasShop())

	saved := Session{
		Token:         "tok-123",
		Refresh:       "ref-456",
		ShopID:        "shop-1",
		ShopName:      "ร้านทดสอบ",
		Username:      "somchai",
		Authenticated: true,
	}
	require.NoError(t, store.SaveSession(ctx, saved))

	got, err := store.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.True(t, got.HasShop())
}

func TestClearWipesSessionOnly(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.SaveSession(ctx, Session{Token: "tok", Authenticated: true}))
	require.NoError(t, store.SetPreference(ctx, "theme", "dark"))
	require.NoError(t, store.SaveSnapshot(ctx, "purchase-vat", FilterSnapshot{Page: 2, PageSize: 20}))

	require.NoError(t, store.Clear(ctx))

	sess, err := store.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)

	theme, err := store.Preference(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	_, ok, err := store.Snapshot(ctx, "purchase-vat")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, ok, err := store.Snapshot(ctx, "sale-vat")
	require.NoError(t, err)
	assert.False(t, ok)

	snap := FilterSnapshot{Page: 3, PageSize: 50, Search: "INV"}
	require.NoError(t, store.SaveSnapshot(ctx, "sale-vat", snap))

	got, ok, err := store.Snapshot(ctx, "sale-vat")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap, got)

	// Overwrite, not accumulate.
	snap.Page = 1
	require.NoError(t, store.SaveSnapshot(ctx, "sale-vat", snap))
	got, _, err = store.Snapshot(ctx, "sale-vat")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Page)
}

func TestClearSnapshots(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.SaveSnapshot(ctx, "payable", FilterSnapshot{Page: 1, PageSize: 20}))
	require.NoError(t, store.SaveSnapshot(ctx, "receivable", FilterSnapshot{Page: 2, PageSize: 10}))

	require.NoError(t, store.ClearSnapshots(ctx))

	_, ok, err := store.Snapshot(ctx, "payable")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	val, err := store.Preference(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	require.NoError(t, store.SetPreference(ctx, "theme", "light"))
	require.NoError(t, store.SetPreference(ctx, "theme", "dark"))

	val, err = store.Preference(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", val)
}
