package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "credential key is empty"},
		{name: "whitespace", key: "   ", wantErr: "credential key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid credential key"},
		{name: "traversal", key: "../escape", wantErr: "invalid credential key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	want := "f3a9c2token"

	err := store.Put(context.Background(), ports.CredentialKeyToken, want)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), ports.CredentialKeyToken)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, ports.CredentialKeyToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(credentialFileMode), info.Mode().Perm())
}

func TestStoreKeysAreIndependent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), ports.CredentialKeyToken, "tok"))

	_, err := store.Get(context.Background(), ports.CredentialKeyMember)
	require.ErrorIs(t, err, domain.ErrCredentialNotFound)

	require.NoError(t, store.Delete(context.Background(), ports.CredentialKeyToken))

	_, err = store.Get(context.Background(), ports.CredentialKeyToken)
	require.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestStoreDeleteIsIdempotentWhenCredentialMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	err := store.Delete(context.Background(), ports.CredentialKeyToken)
	require.NoError(t, err)

	err = store.Delete(context.Background(), ports.CredentialKeyToken)
	require.NoError(t, err)
}
