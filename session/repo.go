package session

// Repo defines the interface for durable credential storage. The three
// records are keyed independently but treated as one unit: StoreSession
// persists all of them or leaves nothing behind, and Clear removes all of
// them. Load returning an empty access token means no session is stored.
type Repo interface {
	// StoreSession persists the credential set.
	StoreSession(accessToken, refreshToken string, userRecord []byte) error

	// LoadSession retrieves the stored credential set, if any.
	LoadSession() (accessToken, refreshToken string, userRecord []byte, err error)

	// Clear removes every stored credential record.
	Clear() error
}
