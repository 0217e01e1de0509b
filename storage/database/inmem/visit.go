package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/codestock/core/visit"
)

type visitRepository struct {
	db *visitTable
}

func NewVisitRepository(db *DB) visit.Repository {
	return &visitRepository{db: db.visit}
}

func (repo *visitRepository) RecordVisit(v visit.Visit) (visit.Visit, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	v.ID = uuid.NewString()
	repo.db.rows = append(repo.db.rows, v)
	return v, nil
}

func (repo *visitRepository) QueryAllVisits() ([]visit.Visit, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	visits := make([]visit.Visit, len(repo.db.rows))
	copy(visits, repo.db.rows)
	return visits, nil
}

func (repo *visitRepository) QueryVisitsByUser(userID int) ([]visit.Visit, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	visits := make([]visit.Visit, 0)
	for _, v := range repo.db.rows {
		if v.UserID == userID {
			visits = append(visits, v)
		}
	}
	return visits, nil
}

func (repo *visitRepository) MostVisitedPages(limit int) ([]visit.PageCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, v := range repo.db.rows {
		counts[v.Page]++
	}

	stats := make([]visit.PageCount, 0, len(counts))
	for page, count := range counts {
		stats = append(stats, visit.PageCount{Page: page, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Page < stats[j].Page // stable order for equal counts
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
