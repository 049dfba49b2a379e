package repofake

import (
	"sync"

	"github.com/flamertt/go-storefront-client/session"
)

var _ session.Repo = (*FakeCredentialRepo)(nil)

// FakeCredentialRepo keeps the credential set in memory for tests.
type FakeCredentialRepo struct {
	lock         sync.Mutex
	accessToken  string
	refreshToken string
	userRecord   []byte

	// StoreErr, when set, is returned by StoreSession to exercise the
	// persistence failure path.
	StoreErr error
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{}
}

func (r *FakeCredentialRepo) StoreSession(accessToken, refreshToken string, userRecord []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.StoreErr != nil {
		return r.StoreErr
	}
	r.accessToken = accessToken
	r.refreshToken = refreshToken
	r.userRecord = append([]byte(nil), userRecord...)
	return nil
}

func (r *FakeCredentialRepo) LoadSession() (string, string, []byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.accessToken, r.refreshToken, append([]byte(nil), r.userRecord...), nil
}

func (r *FakeCredentialRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.accessToken = ""
	r.refreshToken = ""
	r.userRecord = nil
	return nil
}

// Empty reports whether nothing is stored.
func (r *FakeCredentialRepo) Empty() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.accessToken == "" && r.refreshToken == "" && len(r.userRecord) == 0
}
