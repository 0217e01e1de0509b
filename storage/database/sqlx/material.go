package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/material"
)

type materialRepository struct {
	db *sqlx.DB
}

func NewMaterialRepository(db *sqlx.DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) CreateMaterial(m material.Material) (material.Material, error) {
	query := `INSERT INTO learning_material (title, content, category, author_id, read_time, created_at, updated_at)
              VALUES (:title, :content, :category, :author_id, :read_time, :created_at, :updated_at)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, m)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "creating material")
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&m.ID); err != nil {
			return material.Material{}, errors.Wrap(err, "scanning material id")
		}
	}
	return m, errors.Wrap(rows.Err(), "creating material")
}

func (repo *materialRepository) GetMaterialByID(id int) (material.Material, error) {
	var m material.Material
	err := repo.db.Get(&m, `SELECT * FROM learning_material WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return material.Material{}, material.ErrNotFound
	case err != nil:
		return material.Material{}, errors.Wrap(err, "getting material")
	}
	return m, nil
}

func (repo *materialRepository) QueryAllMaterials() ([]material.Material, error) {
	var mats []material.Material
	err := repo.db.Select(&mats, `SELECT * FROM learning_material ORDER BY created_at DESC`)
	return mats, errors.Wrap(err, "querying materials")
}

func (repo *materialRepository) UpdateMaterial(m material.Material) (material.Material, error) {
	query := `UPDATE learning_material
              SET title = :title, content = :content, category = :category,
                  read_time = :read_time, updated_at = :updated_at
              WHERE id = :id`
	res, err := repo.db.NamedExec(query, m)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "updating material")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.Material{}, material.ErrNotFound
	}
	return m, nil
}

func (repo *materialRepository) DeleteMaterial(id int) error {
	res, err := repo.db.Exec(`DELETE FROM learning_material WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting material")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.ErrNotFound
	}
	return nil
}
