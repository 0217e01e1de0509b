package inmemdb

import (
	"github.com/trezcool/codestock/core/material"
)

type materialRepository struct {
	db *materialTable
}

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.material}
}

func (repo *materialRepository) CreateMaterial(m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	m.ID = repo.db.pk
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) GetMaterialByID(id int) (material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) QueryAllMaterials() ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	materials := make([]material.Material, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		materials = append(materials, *m)
	}
	return materials, nil
}

func (repo *materialRepository) UpdateMaterial(m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[m.ID]; !ok {
		return material.Material{}, material.ErrNotFound
	}
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) DeleteMaterial(id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return material.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
