package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	query := `INSERT INTO assignment (title, description, course, due_date, created_at)
              VALUES (:title, :description, :course, :due_date, :created_at)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, a)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&a.ID); err != nil {
			return assignment.Assignment{}, errors.Wrap(err, "scanning assignment id")
		}
	}
	return a, errors.Wrap(rows.Err(), "creating assignment")
}

func (repo *assignmentRepository) GetAssignmentByID(id int) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := repo.db.Get(&a, `SELECT * FROM assignment WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return assignment.Assignment{}, assignment.ErrNotFound
	case err != nil:
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAllAssignments() ([]assignment.Assignment, error) {
	var assignments []assignment.Assignment
	err := repo.db.Select(&assignments, `SELECT * FROM assignment ORDER BY due_date`)
	return assignments, errors.Wrap(err, "querying assignments")
}

func (repo *assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	query := `UPDATE assignment
              SET title = :title, description = :description, course = :course, due_date = :due_date
              WHERE id = :id`
	res, err := repo.db.NamedExec(query, a)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(id int) error {
	res, err := repo.db.Exec(`DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) CreateSubmission(s assignment.Submission) (assignment.Submission, error) {
	query := `INSERT INTO assignment_submission (assignment_id, user_id, file_url, comment, status, grade, submitted_at)
              VALUES (:assignment_id, :user_id, :file_url, :comment, :status, :grade, :submitted_at)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, s)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "creating submission")
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&s.ID); err != nil {
			return assignment.Submission{}, errors.Wrap(err, "scanning submission id")
		}
	}
	return s, errors.Wrap(rows.Err(), "creating submission")
}

func (repo *assignmentRepository) GetSubmissionByID(id int) (assignment.Submission, error) {
	var s assignment.Submission
	err := repo.db.Get(&s, `SELECT * FROM assignment_submission WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	case err != nil:
		return assignment.Submission{}, errors.Wrap(err, "getting submission")
	}
	return s, nil
}

func (repo *assignmentRepository) QuerySubmissionsByUser(userID int) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.Select(&subs, `SELECT * FROM assignment_submission WHERE user_id = $1 ORDER BY submitted_at DESC`, userID)
	return subs, errors.Wrap(err, "querying submissions")
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(assignmentID int) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.Select(&subs, `SELECT * FROM assignment_submission WHERE assignment_id = $1 ORDER BY submitted_at DESC`, assignmentID)
	return subs, errors.Wrap(err, "querying submissions")
}

func (repo *assignmentRepository) UpdateSubmission(s assignment.Submission) (assignment.Submission, error) {
	query := `UPDATE assignment_submission
              SET file_url = :file_url, comment = :comment, status = :status, grade = :grade
              WHERE id = :id`
	res, err := repo.db.NamedExec(query, s)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return s, nil
}
