package filerepo_test

import (
	"testing"

	"github.com/flamertt/go-storefront-client/session/filerepo"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadClearRoundTrip(t *testing.T) {
	repo, err := filerepo.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.StoreSession("access-1", "refresh-1", []byte(`{"id":"u1"}`)))

	accessToken, refreshToken, userRecord, err := repo.LoadSession()
	require.NoError(t, err)
	require.Equal(t, "access-1", accessToken)
	require.Equal(t, "refresh-1", refreshToken)
	require.JSONEq(t, `{"id":"u1"}`, string(userRecord))

	require.NoError(t, repo.Clear())

	accessToken, refreshToken, userRecord, err = repo.LoadSession()
	require.NoError(t, err)
	require.Empty(t, accessToken)
	require.Empty(t, refreshToken)
	require.Empty(t, userRecord)
}

func TestLoadFromEmptyFolder(t *testing.T) {
	repo, err := filerepo.New(t.TempDir())
	require.NoError(t, err)

	accessToken, _, _, err := repo.LoadSession()
	require.NoError(t, err)
	require.Empty(t, accessToken)
}
