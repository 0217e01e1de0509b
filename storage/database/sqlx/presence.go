package sqlxrepos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/presence"
)

type presenceRepository struct {
	db *sqlx.DB
}

func NewPresenceRepository(db *sqlx.DB) presence.Repository {
	return &presenceRepository{db: db}
}

func (repo *presenceRepository) UpsertEntry(userID int, page string, now time.Time) (presence.Entry, error) {
	// NULLIF keeps the previously recorded page when the heartbeat carries none.
	query := `INSERT INTO presence_entry (id, user_id, last_active, current_page)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id) DO UPDATE
                  SET last_active  = EXCLUDED.last_active,
                      current_page = COALESCE(NULLIF(EXCLUDED.current_page, ''), presence_entry.current_page)
              RETURNING *`
	var e presence.Entry
	err := repo.db.Get(&e, query, uuid.NewString(), userID, now, page)
	return e, errors.Wrap(err, "upserting presence entry")
}

func (repo *presenceRepository) QueryEntriesSince(cutoff time.Time) ([]presence.Entry, error) {
	var entries []presence.Entry
	err := repo.db.Select(&entries, `SELECT * FROM presence_entry WHERE last_active >= $1`, cutoff)
	return entries, errors.Wrap(err, "querying presence entries")
}
