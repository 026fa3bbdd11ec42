package credstore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func testEntry(email string) Entry {
	return Entry{
		Email:    email,
		Password: "senha123",
		Profile: Profile{
			UserID:     uuid.New(),
			Name:       "Ana",
			TenantID:   uuid.New(),
			TenantSlug: "loja-x",
			TenantName: "Loja X",
			IsAdmin:    true,
		},
	}
}

func openTestStore(t *testing.T, seeds []Entry) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.db")
	store, err := Open(path, seeds, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertAndLookup(t *testing.T) {
	store := openTestStore(t, nil)

	require.NoError(t, store.Upsert(testEntry("a@x.com")))

	entry, ok, err := store.Lookup("a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "senha123", entry.Password)
	assert.Equal(t, "loja-x", entry.Profile.TenantSlug)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	store := openTestStore(t, nil)

	require.NoError(t, store.Upsert(testEntry("Ana@X.com")))

	_, ok, err := store.Lookup("ana@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.Lookup("ANA@X.COM")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpsertOverwritesExistingEntry(t *testing.T) {
	store := openTestStore(t, nil)

	first := testEntry("a@x.com")
	require.NoError(t, store.Upsert(first))

	second := first
	second.Password = "outrasenha"
	require.NoError(t, store.Upsert(second))

	entry, ok, err := store.Lookup("a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "outrasenha", entry.Password)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLookupMiss(t *testing.T) {
	store := openTestStore(t, nil)

	entry, ok, err := store.Lookup("nobody@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entry)
}

func TestSeedsAreServedButNotPersisted(t *testing.T) {
	seeds := DefaultSeeds()
	store := openTestStore(t, seeds)

	entry, ok, err := store.Lookup("admin@demo.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin123", entry.Password)

	// Seeds never touch the bucket
	count := 0
	require.NoError(t, store.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(credentialsBucket)).ForEach(func(k, v []byte) error {
			count++
			return nil
		})
	}))
	assert.Zero(t, count)
}

func TestPersistedEntryShadowsSeed(t *testing.T) {
	store := openTestStore(t, DefaultSeeds())

	override := testEntry("admin@demo.com")
	override.Password = "novasenha"
	require.NoError(t, store.Upsert(override))

	entry, ok, err := store.Lookup("admin@demo.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "novasenha", entry.Password)
}

func TestClearRemovesDynamicEntriesButKeepsSeeds(t *testing.T) {
	store := openTestStore(t, DefaultSeeds())

	require.NoError(t, store.Upsert(testEntry("a@x.com")))
	require.NoError(t, store.Upsert(testEntry("b@x.com")))

	require.NoError(t, store.Clear())

	// Dynamic entries are gone
	_, ok, err := store.Lookup("a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Seed credentials remain usable
	entry, ok, err := store.Lookup("admin@demo.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin123", entry.Password)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, len(DefaultSeeds()))
}

func TestCorruptedEntryIsTreatedAsAbsent(t *testing.T) {
	store := openTestStore(t, nil)
	require.NoError(t, store.Upsert(testEntry("ok@x.com")))

	// Write garbage straight into the bucket
	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(credentialsBucket)).Put([]byte("broken@x.com"), []byte("{not json"))
	}))

	entry, ok, err := store.Lookup("broken@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entry)

	// List skips the corrupted entry and keeps the good one
	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok@x.com", entries[0].Email)
}

func TestEntriesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	store, err := Open(path, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(testEntry("a@x.com")))
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil, nil)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.Lookup("a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
