package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/award"
)

type awardRepository struct {
	db *sqlx.DB
}

func NewAwardRepository(db *sqlx.DB) award.Repository {
	return &awardRepository{db: db}
}

func (repo *awardRepository) CreateAward(a award.Award) (award.Award, error) {
	query := `INSERT INTO award (name, description, badge, created_at)
              VALUES (:name, :description, :badge, :created_at)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, a)
	if err != nil {
		return award.Award{}, errors.Wrap(err, "creating award")
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&a.ID); err != nil {
			return award.Award{}, errors.Wrap(err, "scanning award id")
		}
	}
	return a, errors.Wrap(rows.Err(), "creating award")
}

func (repo *awardRepository) GetAwardByID(id int) (award.Award, error) {
	var a award.Award
	err := repo.db.Get(&a, `SELECT * FROM award WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return award.Award{}, award.ErrNotFound
	case err != nil:
		return award.Award{}, errors.Wrap(err, "getting award")
	}
	return a, nil
}

func (repo *awardRepository) QueryAllAwards() ([]award.Award, error) {
	var awards []award.Award
	err := repo.db.Select(&awards, `SELECT * FROM award ORDER BY id`)
	return awards, errors.Wrap(err, "querying awards")
}

func (repo *awardRepository) UpdateAward(a award.Award) (award.Award, error) {
	query := `UPDATE award SET name = :name, description = :description, badge = :badge WHERE id = :id`
	res, err := repo.db.NamedExec(query, a)
	if err != nil {
		return award.Award{}, errors.Wrap(err, "updating award")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return award.Award{}, award.ErrNotFound
	}
	return a, nil
}

func (repo *awardRepository) DeleteAward(id int) error {
	res, err := repo.db.Exec(`DELETE FROM award WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting award")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return award.ErrNotFound
	}
	return nil
}

func (repo *awardRepository) CreateUserAward(ua award.UserAward) (award.UserAward, error) {
	query := `INSERT INTO user_award (user_id, award_id, awarded_at)
              VALUES (:user_id, :award_id, :awarded_at)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, ua)
	if err != nil {
		return award.UserAward{}, errors.Wrap(err, "creating user award")
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&ua.ID); err != nil {
			return award.UserAward{}, errors.Wrap(err, "scanning user award id")
		}
	}
	return ua, errors.Wrap(rows.Err(), "creating user award")
}

func (repo *awardRepository) QueryUserAwards(userID int) ([]award.UserAwardDetail, error) {
	type row struct {
		award.UserAward
		Award award.Award `db:"award"`
	}
	query := `SELECT ua.*,
                     a.id "award.id", a.name "award.name", a.description "award.description",
                     a.badge "award.badge", a.created_at "award.created_at"
              FROM user_award ua
              JOIN award a ON a.id = ua.award_id
              WHERE ua.user_id = $1
              ORDER BY ua.awarded_at DESC`
	var rows []row
	if err := repo.db.Select(&rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying user awards")
	}

	details := make([]award.UserAwardDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, award.UserAwardDetail{UserAward: r.UserAward, Award: r.Award})
	}
	return details, nil
}
