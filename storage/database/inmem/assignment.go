package inmemdb

import (
	"github.com/trezcool/codestock/core/assignment"
)

type assignmentRepository struct {
	assignments *assignmentTable
	submissions *submissionTable
}

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{
		assignments: db.assignment,
		submissions: db.submission,
	}
}

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()

	repo.assignments.pk++
	a.ID = repo.assignments.pk
	repo.assignments.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(id int) (assignment.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	if a, ok := repo.assignments.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAllAssignments() ([]assignment.Assignment, error) {
	repo.assignments.RLock()
	defer repo.assignments.RUnlock()

	all := make([]assignment.Assignment, 0, len(repo.assignments.table))
	for _, a := range repo.assignments.table {
		all = append(all, *a)
	}
	return all, nil
}

func (repo *assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()

	if _, ok := repo.assignments.table[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.assignments.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(id int) error {
	repo.assignments.Lock()
	defer repo.assignments.Unlock()

	if _, ok := repo.assignments.table[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.assignments.table, id)
	return nil
}

func (repo *assignmentRepository) CreateSubmission(s assignment.Submission) (assignment.Submission, error) {
	repo.submissions.Lock()
	defer repo.submissions.Unlock()

	repo.submissions.pk++
	s.ID = repo.submissions.pk
	repo.submissions.table[s.ID] = &s
	return s, nil
}

func (repo *assignmentRepository) GetSubmissionByID(id int) (assignment.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	if s, ok := repo.submissions.table[id]; ok {
		return *s, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) QuerySubmissionsByUser(userID int) ([]assignment.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	subs := make([]assignment.Submission, 0)
	for _, s := range repo.submissions.table {
		if s.UserID == userID {
			subs = append(subs, *s)
		}
	}
	return subs, nil
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(assignmentID int) ([]assignment.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	subs := make([]assignment.Submission, 0)
	for _, s := range repo.submissions.table {
		if s.AssignmentID == assignmentID {
			subs = append(subs, *s)
		}
	}
	return subs, nil
}

func (repo *assignmentRepository) UpdateSubmission(s assignment.Submission) (assignment.Submission, error) {
	repo.submissions.Lock()
	defer repo.submissions.Unlock()

	if _, ok := repo.submissions.table[s.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	repo.submissions.table[s.ID] = &s
	return s, nil
}
