package sessionstore

import (
	"sync"

	"github.com/trezcool/codestock/core/session"
)

// inMemStore keeps sessions in a mutex-guarded map. Expired rows are dropped
// lazily by the session service at resolve time; no background sweep.
type inMemStore struct {
	mu    sync.RWMutex
	table map[string]session.Session
}

var _ session.Repository = (*inMemStore)(nil)

func NewInMemStore() session.Repository {
	return &inMemStore{table: make(map[string]session.Session)}
}

func (st *inMemStore) SaveSession(s session.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.table[s.ID] = s
	return nil
}

func (st *inMemStore) GetSession(id string) (session.Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.table[id]
	if !ok {
		return session.Session{}, session.ErrSessionInvalid
	}
	return s, nil
}

func (st *inMemStore) DeleteSession(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.table, id)
	return nil
}
