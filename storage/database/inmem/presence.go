package inmemdb

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/codestock/core/presence"
)

type presenceRepository struct {
	db *presenceTable
}

func NewPresenceRepository(db *DB) presence.Repository {
	return &presenceRepository{db: db.presence}
}

func (repo *presenceRepository) UpsertEntry(userID int, page string, now time.Time) (presence.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if e, ok := repo.db.table[userID]; ok {
		e.LastActive = now
		if page != "" { // a heartbeat without a page keeps the prior page
			e.CurrentPage = page
		}
		return *e, nil
	}

	e := &presence.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		LastActive:  now,
		CurrentPage: page,
	}
	repo.db.table[userID] = e
	return *e, nil
}

func (repo *presenceRepository) QueryEntriesSince(cutoff time.Time) ([]presence.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]presence.Entry, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		if !e.LastActive.Before(cutoff) { // boundary inclusive
			entries = append(entries, *e)
		}
	}
	return entries, nil
}
