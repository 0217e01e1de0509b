package inmemdb

import (
	"github.com/trezcool/codestock/core/award"
)

type awardRepository struct {
	awards     *awardTable
	userAwards *userAwardTable
}

func NewAwardRepository(db *DB) award.Repository {
	return &awardRepository{
		awards:     db.award,
		userAwards: db.userAward,
	}
}

func (repo *awardRepository) CreateAward(a award.Award) (award.Award, error) {
	repo.awards.Lock()
	defer repo.awards.Unlock()

	repo.awards.pk++
	a.ID = repo.awards.pk
	repo.awards.table[a.ID] = &a
	return a, nil
}

func (repo *awardRepository) GetAwardByID(id int) (award.Award, error) {
	repo.awards.RLock()
	defer repo.awards.RUnlock()

	if a, ok := repo.awards.table[id]; ok {
		return *a, nil
	}
	return award.Award{}, award.ErrNotFound
}

func (repo *awardRepository) QueryAllAwards() ([]award.Award, error) {
	repo.awards.RLock()
	defer repo.awards.RUnlock()

	all := make([]award.Award, 0, len(repo.awards.table))
	for _, a := range repo.awards.table {
		all = append(all, *a)
	}
	return all, nil
}

func (repo *awardRepository) UpdateAward(a award.Award) (award.Award, error) {
	repo.awards.Lock()
	defer repo.awards.Unlock()

	if _, ok := repo.awards.table[a.ID]; !ok {
		return award.Award{}, award.ErrNotFound
	}
	repo.awards.table[a.ID] = &a
	return a, nil
}

func (repo *awardRepository) DeleteAward(id int) error {
	repo.awards.Lock()
	defer repo.awards.Unlock()

	if _, ok := repo.awards.table[id]; !ok {
		return award.ErrNotFound
	}
	delete(repo.awards.table, id)
	return nil
}

func (repo *awardRepository) CreateUserAward(ua award.UserAward) (award.UserAward, error) {
	repo.userAwards.Lock()
	defer repo.userAwards.Unlock()

	repo.userAwards.pk++
	ua.ID = repo.userAwards.pk
	repo.userAwards.table[ua.ID] = &ua
	return ua, nil
}

func (repo *awardRepository) QueryUserAwards(userID int) ([]award.UserAwardDetail, error) {
	repo.userAwards.RLock()
	defer repo.userAwards.RUnlock()
	repo.awards.RLock()
	defer repo.awards.RUnlock()

	details := make([]award.UserAwardDetail, 0)
	for _, ua := range repo.userAwards.table {
		if ua.UserID != userID {
			continue
		}
		a, ok := repo.awards.table[ua.AwardID]
		if !ok { // award deleted since assignment; skip the orphan row
			continue
		}
		details = append(details, award.UserAwardDetail{UserAward: *ua, Award: *a})
	}
	return details, nil
}
