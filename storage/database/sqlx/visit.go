package sqlxrepos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/visit"
)

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) visit.Repository {
	return &visitRepository{db: db}
}

func (repo *visitRepository) RecordVisit(v visit.Visit) (visit.Visit, error) {
	v.ID = uuid.NewString()
	query := `INSERT INTO page_visit (id, page, user_id, visited_at)
              VALUES (:id, :page, :user_id, :visited_at)`
	_, err := repo.db.NamedExec(query, v)
	return v, errors.Wrap(err, "recording visit")
}

func (repo *visitRepository) QueryAllVisits() ([]visit.Visit, error) {
	var visits []visit.Visit
	err := repo.db.Select(&visits, `SELECT * FROM page_visit ORDER BY visited_at DESC`)
	return visits, errors.Wrap(err, "querying visits")
}

func (repo *visitRepository) QueryVisitsByUser(userID int) ([]visit.Visit, error) {
	var visits []visit.Visit
	err := repo.db.Select(&visits, `SELECT * FROM page_visit WHERE user_id = $1 ORDER BY visited_at DESC`, userID)
	return visits, errors.Wrap(err, "querying visits")
}

func (repo *visitRepository) MostVisitedPages(limit int) ([]visit.PageCount, error) {
	query := `SELECT page, COUNT(*) count FROM page_visit
              GROUP BY page
              ORDER BY count DESC, page
              LIMIT $1`
	var counts []visit.PageCount
	err := repo.db.Select(&counts, query, limit)
	return counts, errors.Wrap(err, "aggregating visits")
}
