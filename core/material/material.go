package material

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
)

var (
	ErrNotFound = errors.New("learning material not found")

	nowFunc = time.Now // mockable
)

type Material struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Category  string    `json:"category" db:"category"`
	AuthorID  int       `json:"author_id" db:"author_id"`
	ReadTime  int       `json:"read_time" db:"read_time"` // minutes
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NewMaterial struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required"`
	ReadTime int    `json:"read_time" validate:"required,min=1"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Category = core.CleanString(nm.Category)
	return validate.Struct(nm)
}

// UpdateMaterial carries partial updates; zero-valued fields keep the stored value.
type UpdateMaterial struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ReadTime int    `json:"read_time" validate:"omitempty,min=1"`
}

func (um *UpdateMaterial) Validate(validate *validator.Validate) error {
	um.Title = core.CleanString(um.Title)
	um.Category = core.CleanString(um.Category)
	return validate.Struct(um)
}

type Repository interface {
	CreateMaterial(m Material) (Material, error)
	GetMaterialByID(id int) (Material, error)
	QueryAllMaterials() ([]Material, error)
	UpdateMaterial(m Material) (Material, error)
	DeleteMaterial(id int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nm NewMaterial, authorID int) (Material, error) {
	now := nowFunc().UTC()
	return svc.repo.CreateMaterial(Material{
		Title:     nm.Title,
		Content:   nm.Content,
		Category:  nm.Category,
		AuthorID:  authorID,
		ReadTime:  nm.ReadTime,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetByID(id int) (Material, error) {
	return svc.repo.GetMaterialByID(id)
}

func (svc *Service) QueryAll() ([]Material, error) {
	return svc.repo.QueryAllMaterials()
}

func (svc *Service) Update(id int, um UpdateMaterial) (Material, error) {
	m, err := svc.repo.GetMaterialByID(id)
	if err != nil {
		return Material{}, err
	}
	if um.Title != "" {
		m.Title = um.Title
	}
	if um.Content != "" {
		m.Content = um.Content
	}
	if um.Category != "" {
		m.Category = um.Category
	}
	if um.ReadTime > 0 {
		m.ReadTime = um.ReadTime
	}
	m.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateMaterial(m)
}

func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteMaterial(id)
}
