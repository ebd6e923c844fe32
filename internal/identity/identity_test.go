package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/store"
)

func newDirectory(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestResolve_KnownUserID(t *testing.T) {
	st := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, st.InsertUser(ctx, "emp-100", "9876543210"))

	got, err := NewResolver(st).Resolve(ctx, "emp-100", "")
	require.NoError(t, err)
	assert.Equal(t, "emp-100", got)
}

func TestResolve_UnknownIDWithMobileRegisters(t *testing.T) {
	st := newDirectory(t)
	ctx := context.Background()

	got, err := NewResolver(st).Resolve(ctx, "emp-200", "9123456789")
	require.NoError(t, err)
	assert.Equal(t, "emp-200", got)

	entry, err := st.GetUserByID(ctx, "emp-200")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "9123456789", entry.MobileNumber)
}

func TestResolve_UnknownIDWithoutMobile(t *testing.T) {
	st := newDirectory(t)

	_, err := NewResolver(st).Resolve(context.Background(), "emp-300", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResolve_BackfillsMissingMobile(t *testing.T) {
	st := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, st.InsertUser(ctx, "emp-100", ""))

	got, err := NewResolver(st).Resolve(ctx, "emp-100", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "emp-100", got)

	entry, err := st.GetUserByID(ctx, "emp-100")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", entry.MobileNumber)
}

func TestResolve_ExistingMobileNotOverwritten(t *testing.T) {
	st := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, st.InsertUser(ctx, "emp-100", "9876543210"))

	_, err := NewResolver(st).Resolve(ctx, "emp-100", "1111111111")
	require.NoError(t, err)

	entry, err := st.GetUserByID(ctx, "emp-100")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", entry.MobileNumber)
}

func TestResolve_ByMobile(t *testing.T) {
	st := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, st.InsertUser(ctx, "emp-100", "9876543210"))

	got, err := NewResolver(st).Resolve(ctx, "", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "emp-100", got)
}

func TestResolve_UnknownMobile(t *testing.T) {
	st := newDirectory(t)

	_, err := NewResolver(st).Resolve(context.Background(), "", "0000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResolve_NothingSupplied(t *testing.T) {
	st := newDirectory(t)

	_, err := NewResolver(st).Resolve(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrMobileRequired)
}
