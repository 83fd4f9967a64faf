package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestStoreFailsBeforeOpen(t *testing.T) {
	store := NewStore()

	_, err := store.DB()
	require.ErrorIs(t, err, ErrStoreClosed)
	require.ErrorIs(t, store.Migrate(), ErrStoreClosed)
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Open(sqlite.Open("file:store_lifecycle?mode=memory&cache=shared"), nil))
	require.NoError(t, store.Migrate())

	db, err := store.DB()
	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable("candidates_tests"))
	require.True(t, db.Migrator().HasTable("results"))

	require.NoError(t, store.Close())
	_, err = store.DB()
	require.ErrorIs(t, err, ErrStoreClosed)
}
