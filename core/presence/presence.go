package presence

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/user"
)

var nowFunc = time.Now // mockable

// Entry is a user's latest heartbeat; one row per user, upserted in place.
// Entries are never deleted: they age out of "active" results through the
// time-window query only.
type Entry struct {
	ID          string    `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	LastActive  time.Time `json:"last_active" db:"last_active"`
	CurrentPage string    `json:"current_page,omitempty" db:"current_page"`
}

// ActiveEntry is an Entry joined with its user record.
type ActiveEntry struct {
	Entry
	User user.User `json:"user"`
}

type Repository interface {
	// UpsertEntry sets the user's lastActive to now. An empty page keeps the
	// previously recorded page. Racing upserts for the same user may land in
	// either order; last write wins.
	UpsertEntry(userID int, page string, now time.Time) (Entry, error)
	// QueryEntriesSince returns entries with lastActive at or after cutoff,
	// in no particular order.
	QueryEntriesSince(cutoff time.Time) ([]Entry, error)
}

// UserDirectory is the user-lookup capability consumed for the active-users
// join; *user.Service satisfies it.
type UserDirectory interface {
	GetByID(id int) (user.User, error)
}

type Service struct {
	repo   Repository
	users  UserDirectory
	logger core.Logger
}

func NewService(repo Repository, users UserDirectory, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// Heartbeat records activity for the user. Safe to call at arbitrary frequency.
func (svc *Service) Heartbeat(userID int, page string) (Entry, error) {
	return svc.repo.UpsertEntry(userID, page, nowFunc())
}

// ListActive returns every entry active within the threshold window, joined
// with user records. The boundary is inclusive: an entry aged exactly
// threshold still counts. An entry whose user no longer exists means the two
// stores have drifted; it is logged loudly and excluded from the results,
// never fabricated.
func (svc *Service) ListActive(threshold time.Duration) ([]ActiveEntry, error) {
	entries, err := svc.repo.QueryEntriesSince(nowFunc().Add(-threshold))
	if err != nil {
		return nil, errors.Wrap(err, "querying presence entries")
	}

	active := make([]ActiveEntry, 0, len(entries))
	for _, e := range entries {
		usr, err := svc.users.GetByID(e.UserID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				svc.logger.Error(fmt.Sprintf("presence entry %s references unknown user %d", e.ID, e.UserID), e)
				continue
			}
			return nil, errors.Wrap(err, "finding user by ID")
		}
		active = append(active, ActiveEntry{Entry: e, User: usr})
	}
	return active, nil
}
