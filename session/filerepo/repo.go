// Package filerepo persists the credential set as three independently keyed
// files under a data folder, mirroring the three durable records the session
// store owns: access token, refresh token and the serialized user record.
package filerepo

import (
	"os"
	"path/filepath"

	"github.com/flamertt/go-storefront-client/session"
	"github.com/pkg/errors"
)

const (
	accessTokenFile  = "access_token"
	refreshTokenFile = "refresh_token"
	userRecordFile   = "user.json"
)

var _ session.Repo = (*Repo)(nil)

// Repo stores credentials on disk, readable only by the owning user.
type Repo struct {
	folder string
}

// New creates the data folder if needed and returns a Repo rooted there.
func New(folder string) (*Repo, error) {
	if folder == "" {
		return nil, errors.New("[filerepo.New] data folder is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] creating data folder")
	}
	return &Repo{folder: folder}, nil
}

// StoreSession writes all three records; a partial write is rolled back by
// clearing whatever landed, so the store never restores half a session.
func (r *Repo) StoreSession(accessToken, refreshToken string, userRecord []byte) error {
	records := map[string][]byte{
		accessTokenFile:  []byte(accessToken),
		refreshTokenFile: []byte(refreshToken),
		userRecordFile:   userRecord,
	}
	for name, payload := range records {
		if err := os.WriteFile(filepath.Join(r.folder, name), payload, 0o600); err != nil {
			_ = r.Clear()
			return errors.Wrapf(err, "[Repo.StoreSession] writing %s", name)
		}
	}
	return nil
}

// LoadSession reads the stored credential set. Missing files read as empty
// values, which the session store treats as "no session".
func (r *Repo) LoadSession() (string, string, []byte, error) {
	accessToken := r.readOptional(accessTokenFile)
	refreshToken := r.readOptional(refreshTokenFile)
	userRecord := r.readOptional(userRecordFile)
	return string(accessToken), string(refreshToken), userRecord, nil
}

// Clear removes every credential file; all three go together.
func (r *Repo) Clear() error {
	var firstErr error
	for _, name := range []string{accessTokenFile, refreshTokenFile, userRecordFile} {
		if err := os.Remove(filepath.Join(r.folder, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = errors.Wrapf(err, "[Repo.Clear] removing %s", name)
		}
	}
	return firstErr
}

func (r *Repo) readOptional(name string) []byte {
	payload, err := os.ReadFile(filepath.Join(r.folder, name))
	if err != nil {
		return nil
	}
	return payload
}
