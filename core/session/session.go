package session

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
)

const tokenBytes = 32 // 256 bits of entropy per token

var (
	// ErrSessionInvalid covers unknown, revoked and expired sessions alike so
	// that callers cannot tell whether a token ever existed.
	ErrSessionInvalid = errors.New("session invalid")

	nowFunc = time.Now // mockable
)

// Session correlates a client cookie to an authenticated user.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

func (s Session) TTL(now time.Time) time.Duration { return s.ExpiresAt.Sub(now) }

type Repository interface {
	// SaveSession persists the session under its ID.
	SaveSession(s Session) error
	// GetSession returns ErrSessionInvalid for unknown IDs.
	GetSession(id string) (Session, error)
	// DeleteSession is a no-op for unknown IDs.
	DeleteSession(id string) error
}

type Service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(repo Repository, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

// Create mints a new session for the given user. Existing sessions for the
// same user are left alone; concurrent sessions from multiple devices are fine.
func (svc *Service) Create(userID int) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	now := nowFunc()
	s := Session{
		ID:        token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(svc.ttl),
	}
	if err = svc.repo.SaveSession(s); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return s, nil
}

// Resolve returns the user the session belongs to. Expiry is checked passively
// here; expired rows are dropped on sight rather than swept in the background.
func (svc *Service) Resolve(id string) (int, error) {
	if id == "" {
		return 0, ErrSessionInvalid
	}
	s, err := svc.repo.GetSession(id)
	if err != nil {
		if errors.Cause(err) == ErrSessionInvalid {
			return 0, ErrSessionInvalid
		}
		return 0, errors.Wrap(err, "getting session")
	}
	if s.Expired(nowFunc()) {
		_ = svc.repo.DeleteSession(id)
		return 0, ErrSessionInvalid
	}
	return s.UserID, nil
}

// Revoke ends the session; revoking an unknown or already-revoked session is
// a no-op, not an error.
func (svc *Service) Revoke(id string) error {
	if id == "" {
		return nil
	}
	return svc.repo.DeleteSession(id)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating session token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
