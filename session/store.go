package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Doer issues a JSON request against the storefront API. Satisfied by
// *rest.Client.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Store owns the session and its credential lifecycle. It is the only
// component that mutates session state; everything else reads the bearer
// credential through AuthHeader. Expiry is checked lazily on every read,
// never by a timer.
type Store struct {
	repo    Repo
	api     Doer
	nowTime func() time.Time

	mu      sync.Mutex
	current *Session
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New initializes a session Store. The store starts unauthenticated; call
// Restore to pick up durably stored credentials.
func New(repo Repo, api Doer, options ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[session.New] credential repo is required")
	}
	if api == nil {
		return nil, errors.New("[session.New] api client is required")
	}

	store := &Store{
		repo:    repo,
		api:     api,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authEnvelope struct {
	Success bool      `json:"success"`
	Data    *authData `json:"data"`
	Message string    `json:"message"`
}

type authData struct {
	User         json.RawMessage `json:"user"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    int64           `json:"expires_at"`
}

// Login exchanges credentials for a session, persists it durably and
// returns it. Any non-2xx response or malformed payload fails with
// ErrInvalidCredentials and leaves nothing behind.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	var envelope authEnvelope
	if err := s.api.Do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &envelope); err != nil {
		log.Err(err).Str("email", email).Msg("login failed")
		return nil, ErrInvalidCredentials
	}
	return s.establish(&envelope)
}

// Register creates an account and immediately establishes a session
// equivalent to a login.
func (s *Store) Register(ctx context.Context, email, password, firstName, lastName string) (*Session, error) {
	req := registerRequest{Email: email, Password: password, FirstName: firstName, LastName: lastName}
	var envelope authEnvelope
	if err := s.api.Do(ctx, http.MethodPost, "/auth/register", req, &envelope); err != nil {
		log.Err(err).Str("email", email).Msg("registration failed")
		return nil, ErrInvalidCredentials
	}
	return s.establish(&envelope)
}

// Refresh trades the stored refresh token for a fresh session. There is no
// background refresh; this is the user-initiated recovery path. On failure
// the session is cleared rather than left half-valid.
func (s *Store) Refresh(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	var refreshToken string
	if s.current != nil {
		refreshToken = s.current.RefreshToken
	}
	s.mu.Unlock()
	if refreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	var envelope authEnvelope
	if err := s.api.Do(ctx, http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &envelope); err != nil {
		log.Err(err).Msg("token refresh failed")
		s.Teardown()
		return nil, ErrInvalidCredentials
	}
	return s.establish(&envelope)
}

// Logout notifies the server best-effort, then unconditionally clears both
// in-memory and durable state. Clearing is never contingent on the server
// call succeeding, so the client can't get stuck authenticated against a
// server that already invalidated the token.
func (s *Store) Logout(ctx context.Context) {
	if s.AuthHeader() != "" {
		if err := s.api.Do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
			log.Err(err).Msg("logout notification failed")
		}
	}
	s.Teardown()
}

// Teardown drops the session locally without notifying the server. It is
// the entry point for the unauthorized cascade: any 401 observed on an
// authenticated request anywhere lands here.
func (s *Store) Teardown() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.repo.Clear(); err != nil {
		log.Err(err).Msg("clearing stored credentials")
	}
}

// Restore loads a durably stored session, if one exists. A stored token
// whose user record does not parse is discarded entirely: the store falls
// back to unauthenticated rather than carrying a partial session.
func (s *Store) Restore() {
	accessToken, refreshToken, userRecord, err := s.repo.LoadSession()
	if err != nil {
		log.Err(err).Msg("loading stored credentials")
		return
	}
	if accessToken == "" {
		return
	}

	var sess Session
	if err := json.Unmarshal(userRecord, &sess); err != nil || sess.UserID == "" {
		log.Warn().Msg("discarding stored session with unreadable user record")
		if err := s.repo.Clear(); err != nil {
			log.Err(err).Msg("clearing stored credentials")
		}
		return
	}

	sess.AccessToken = accessToken
	sess.RefreshToken = refreshToken
	sess.ExpiresAt = tokenExpiry(accessToken)

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	log.Info().Str("email", sess.Email).Msg("session restored")
}

// Current returns the session, or nil when unauthenticated. Detecting an
// elapsed expiry here destroys the session, exactly as a logout would.
func (s *Store) Current() *Session {
	s.mu.Lock()
	sess := s.current
	expired := sess != nil && sess.Expired(s.nowTime())
	if expired {
		s.current = nil
	}
	s.mu.Unlock()

	if expired {
		log.Info().Msg("session expired")
		if err := s.repo.Clear(); err != nil {
			log.Err(err).Msg("clearing stored credentials")
		}
		return nil
	}
	return sess
}

// IsAuthenticated is true iff both the user identity and the access token
// are present.
func (s *Store) IsAuthenticated() bool {
	sess := s.Current()
	return sess != nil && sess.UserID != "" && sess.AccessToken != ""
}

// AuthHeader returns the bearer credential for outbound requests, or the
// empty string when no session exists.
func (s *Store) AuthHeader() string {
	sess := s.Current()
	if sess == nil || sess.AccessToken == "" {
		return ""
	}
	return "Bearer " + sess.AccessToken
}

// establish turns a successful auth response into the active session,
// persisting it durably before it becomes visible.
func (s *Store) establish(envelope *authEnvelope) (*Session, error) {
	if envelope == nil || !envelope.Success || envelope.Data == nil || envelope.Data.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}
	data := envelope.Data

	var sess Session
	if err := json.Unmarshal(data.User, &sess); err != nil || sess.UserID == "" {
		log.Warn().Msg("auth response carried an unreadable user record")
		return nil, ErrInvalidCredentials
	}
	sess.AccessToken = data.AccessToken
	sess.RefreshToken = data.RefreshToken
	if data.ExpiresAt > 0 {
		sess.ExpiresAt = time.Unix(data.ExpiresAt, 0)
	} else {
		sess.ExpiresAt = tokenExpiry(data.AccessToken)
	}

	if err := s.repo.StoreSession(data.AccessToken, data.RefreshToken, data.User); err != nil {
		return nil, errors.Wrap(err, "[Store.establish] persisting session")
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	log.Info().Str("email", sess.Email).Msg("session established")
	return &sess, nil
}

// tokenExpiry recovers the expiry from the access token's claims without
// verifying the signature; the server remains the authority, this only
// feeds the lazy local expiry check. Returns the zero time when the token
// carries no readable exp claim.
func tokenExpiry(rawToken string) time.Time {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}
	return expiry.Time
}
