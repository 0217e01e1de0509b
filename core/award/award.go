package award

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
)

var (
	ErrNotFound = errors.New("award not found")

	nowFunc = time.Now // mockable
)

type Award struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Badge       string    `json:"badge" db:"badge"` // short display code, e.g. "JS"
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UserAward struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	AwardID   int       `json:"award_id" db:"award_id"`
	AwardedAt time.Time `json:"awarded_at" db:"awarded_at"`
}

// UserAwardDetail is a UserAward joined with its Award.
type UserAwardDetail struct {
	UserAward
	Award Award `json:"award"`
}

type NewAward struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Badge       string `json:"badge" validate:"required,max=8"`
}

func (na *NewAward) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Badge = core.CleanString(na.Badge)
	return validate.Struct(na)
}

type UpdateAward struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Badge       string `json:"badge" validate:"omitempty,max=8"`
}

func (ua *UpdateAward) Validate(validate *validator.Validate) error {
	ua.Name = core.CleanString(ua.Name)
	ua.Badge = core.CleanString(ua.Badge)
	return validate.Struct(ua)
}

type AssignAward struct {
	UserID  int `json:"user_id" validate:"required"`
	AwardID int `json:"award_id" validate:"required"`
}

func (aa AssignAward) Validate(validate *validator.Validate) error {
	return validate.Struct(aa)
}

type Repository interface {
	CreateAward(a Award) (Award, error)
	GetAwardByID(id int) (Award, error)
	QueryAllAwards() ([]Award, error)
	UpdateAward(a Award) (Award, error)
	DeleteAward(id int) error

	CreateUserAward(ua UserAward) (UserAward, error)
	// QueryUserAwards returns the user's awards joined with award records.
	QueryUserAwards(userID int) ([]UserAwardDetail, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(na NewAward) (Award, error) {
	return svc.repo.CreateAward(Award{
		Name:        na.Name,
		Description: na.Description,
		Badge:       na.Badge,
		CreatedAt:   nowFunc().UTC(),
	})
}

func (svc *Service) GetByID(id int) (Award, error) {
	return svc.repo.GetAwardByID(id)
}

func (svc *Service) QueryAll() ([]Award, error) {
	return svc.repo.QueryAllAwards()
}

func (svc *Service) Update(id int, ua UpdateAward) (Award, error) {
	a, err := svc.repo.GetAwardByID(id)
	if err != nil {
		return Award{}, err
	}
	if ua.Name != "" {
		a.Name = core.CleanString(ua.Name)
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.Badge != "" {
		a.Badge = core.CleanString(ua.Badge)
	}
	return svc.repo.UpdateAward(a)
}

func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteAward(id)
}

// Assign grants an award to a user after checking the award exists.
func (svc *Service) Assign(aa AssignAward) (UserAward, error) {
	if _, err := svc.repo.GetAwardByID(aa.AwardID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return UserAward{}, core.NewValidationError(err, core.FieldError{Field: "award_id", Error: err.Error()})
		}
		return UserAward{}, err
	}
	return svc.repo.CreateUserAward(UserAward{
		UserID:    aa.UserID,
		AwardID:   aa.AwardID,
		AwardedAt: nowFunc().UTC(),
	})
}

func (svc *Service) UserAwards(userID int) ([]UserAwardDetail, error) {
	return svc.repo.QueryUserAwards(userID)
}
