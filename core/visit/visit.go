package visit

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultStatsLimit caps the most-visited-pages aggregation when no limit is given.
const DefaultStatsLimit = 5

var nowFunc = time.Now // mockable

type Visit struct {
	ID        string    `json:"id" db:"id"` // uuid
	Page      string    `json:"page" db:"page"`
	UserID    int       `json:"user_id" db:"user_id"`
	VisitedAt time.Time `json:"visited_at" db:"visited_at"`
}

// PageCount is one row of the most-visited aggregation.
type PageCount struct {
	Page  string `json:"page" db:"page"`
	Count int    `json:"count" db:"count"`
}

type NewVisit struct {
	Page string `json:"page" validate:"required"`
}

func (nv NewVisit) Validate(validate *validator.Validate) error {
	return validate.Struct(nv)
}

type Repository interface {
	RecordVisit(v Visit) (Visit, error)
	QueryAllVisits() ([]Visit, error)
	QueryVisitsByUser(userID int) ([]Visit, error)
	// MostVisitedPages aggregates visit counts per page, most visited first.
	MostVisitedPages(limit int) ([]PageCount, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Record(page string, userID int) (Visit, error) {
	return svc.repo.RecordVisit(Visit{
		Page:      page,
		UserID:    userID,
		VisitedAt: nowFunc().UTC(),
	})
}

func (svc *Service) QueryAll() ([]Visit, error) {
	return svc.repo.QueryAllVisits()
}

func (svc *Service) QueryByUser(userID int) ([]Visit, error) {
	return svc.repo.QueryVisitsByUser(userID)
}

func (svc *Service) MostVisited(limit int) ([]PageCount, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	return svc.repo.MostVisitedPages(limit)
}
