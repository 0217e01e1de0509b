package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
)

// Submission statuses
const (
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
	StatusGraded    = "graded"
)

var (
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	nowFunc = time.Now // mockable
)

type Assignment struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Course      string    `json:"course" db:"course"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Submission struct {
	ID           int       `json:"id" db:"id"`
	AssignmentID int       `json:"assignment_id" db:"assignment_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	FileURL      string    `json:"file_url" db:"file_url"`
	Comment      string    `json:"comment,omitempty" db:"comment"`
	Status       string    `json:"status" db:"status"`
	Grade        *int      `json:"grade,omitempty" db:"grade"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Course      string    `json:"course" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Course = core.CleanString(na.Course)
	return validate.Struct(na)
}

type UpdateAssignment struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Course      string    `json:"course"`
	DueDate     time.Time `json:"due_date"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Course = core.CleanString(ua.Course)
	return validate.Struct(ua)
}

type NewSubmission struct {
	AssignmentID int    `json:"assignment_id" validate:"required"`
	FileURL      string `json:"file_url" validate:"required,url"`
	Comment      string `json:"comment"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.FileURL = core.CleanString(ns.FileURL)
	return validate.Struct(ns)
}

// GradeSubmission is the admin-side review update.
type GradeSubmission struct {
	Status string `json:"status" validate:"omitempty,oneof=submitted reviewed graded"`
	Grade  *int   `json:"grade" validate:"omitempty,min=0,max=100"`
}

func (gs GradeSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(gs)
}

type Repository interface {
	CreateAssignment(a Assignment) (Assignment, error)
	GetAssignmentByID(id int) (Assignment, error)
	QueryAllAssignments() ([]Assignment, error)
	UpdateAssignment(a Assignment) (Assignment, error)
	DeleteAssignment(id int) error

	CreateSubmission(s Submission) (Submission, error)
	GetSubmissionByID(id int) (Submission, error)
	QuerySubmissionsByUser(userID int) ([]Submission, error)
	QuerySubmissionsByAssignment(assignmentID int) ([]Submission, error)
	UpdateSubmission(s Submission) (Submission, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(Assignment{
		Title:       na.Title,
		Description: na.Description,
		Course:      na.Course,
		DueDate:     na.DueDate,
		CreatedAt:   nowFunc().UTC(),
	})
}

func (svc *Service) GetByID(id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(id)
}

func (svc *Service) QueryAll() ([]Assignment, error) {
	return svc.repo.QueryAllAssignments()
}

func (svc *Service) Update(id int, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(id)
	if err != nil {
		return Assignment{}, err
	}
	if ua.Title != "" {
		a.Title = core.CleanString(ua.Title)
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.Course != "" {
		a.Course = core.CleanString(ua.Course)
	}
	if !ua.DueDate.IsZero() {
		a.DueDate = ua.DueDate
	}
	return svc.repo.UpdateAssignment(a)
}

func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteAssignment(id)
}

// Submit records a student's submission after checking the assignment exists.
func (svc *Service) Submit(ns NewSubmission, userID int) (Submission, error) {
	if _, err := svc.repo.GetAssignmentByID(ns.AssignmentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Submission{}, core.NewValidationError(err, core.FieldError{Field: "assignment_id", Error: err.Error()})
		}
		return Submission{}, err
	}
	return svc.repo.CreateSubmission(Submission{
		AssignmentID: ns.AssignmentID,
		UserID:       userID,
		FileURL:      ns.FileURL,
		Comment:      ns.Comment,
		Status:       StatusSubmitted,
		SubmittedAt:  nowFunc().UTC(),
	})
}

func (svc *Service) SubmissionsByUser(userID int) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByUser(userID)
}

func (svc *Service) SubmissionsByAssignment(assignmentID int) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByAssignment(assignmentID)
}

// Grade applies a review update to a submission. Setting a grade without an
// explicit status transitions the submission to graded.
func (svc *Service) Grade(id int, gs GradeSubmission) (Submission, error) {
	s, err := svc.repo.GetSubmissionByID(id)
	if err != nil {
		return Submission{}, err
	}
	if gs.Status != "" {
		s.Status = gs.Status
	}
	if gs.Grade != nil {
		s.Grade = gs.Grade
		if gs.Status == "" {
			s.Status = StatusGraded
		}
	}
	return svc.repo.UpdateSubmission(s)
}
