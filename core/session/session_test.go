package session

import (
	"testing"
	"time"
)

type fakeStore struct {
	sessions map[string]Session
}

var _ Repository = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]Session)}
}

func (st *fakeStore) SaveSession(s Session) error {
	st.sessions[s.ID] = s
	return nil
}

func (st *fakeStore) GetSession(id string) (Session, error) {
	if s, ok := st.sessions[id]; ok {
		return s, nil
	}
	return Session{}, ErrSessionInvalid
}

func (st *fakeStore) DeleteSession(id string) error {
	delete(st.sessions, id)
	return nil
}

func TestNewToken(t *testing.T) {
	t1, err := newToken()
	if err != nil {
		t.Fatalf("newToken() error = %v", err)
	}
	t2, err := newToken()
	if err != nil {
		t.Fatalf("newToken() error = %v", err)
	}
	if t1 == t2 {
		t.Error("newToken() produced identical tokens")
	}
	// 32 raw bytes base64url-encode to 43 chars
	if len(t1) != 43 {
		t.Errorf("newToken() len = %d; want 43", len(t1))
	}
}

func TestService_Lifecycle(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	store := newFakeStore()
	svc := NewService(store, time.Hour)

	sess, err := svc.Create(42)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Create() minted an empty token")
	}
	if got := sess.ExpiresAt.Sub(sess.IssuedAt); got != time.Hour {
		t.Errorf("Create() ttl = %v; want %v", got, time.Hour)
	}

	userID, err := svc.Resolve(sess.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Resolve() userID = %d; want 42", userID)
	}

	// concurrent sessions for the same user coexist
	sess2, err := svc.Create(42)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess2.ID == sess.ID {
		t.Error("Create() reused a token")
	}
	if _, err = svc.Resolve(sess.ID); err != nil {
		t.Errorf("Resolve() first session error = %v", err)
	}

	// revoked
	if err = svc.Revoke(sess.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err = svc.Resolve(sess.ID); err != ErrSessionInvalid {
		t.Errorf("Resolve() after revoke error = %v; want %v", err, ErrSessionInvalid)
	}
	// idempotent
	if err = svc.Revoke(sess.ID); err != nil {
		t.Errorf("Revoke() second call error = %v", err)
	}

	// expired
	nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err = svc.Resolve(sess2.ID); err != ErrSessionInvalid {
		t.Errorf("Resolve() after expiry error = %v; want %v", err, ErrSessionInvalid)
	}
	// the expired row was dropped on sight
	if _, ok := store.sessions[sess2.ID]; ok {
		t.Error("Resolve() left the expired session in the store")
	}
}

func TestService_Resolve_edgeCases(t *testing.T) {
	svc := NewService(newFakeStore(), time.Hour)

	if _, err := svc.Resolve(""); err != ErrSessionInvalid {
		t.Errorf("Resolve(\"\") error = %v; want %v", err, ErrSessionInvalid)
	}
	if _, err := svc.Resolve("never-issued"); err != ErrSessionInvalid {
		t.Errorf("Resolve(unknown) error = %v; want %v", err, ErrSessionInvalid)
	}
	if err := svc.Revoke(""); err != nil {
		t.Errorf("Revoke(\"\") error = %v; want nil", err)
	}
}
