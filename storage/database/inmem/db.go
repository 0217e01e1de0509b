package inmemdb

import (
	"sync"

	"github.com/trezcool/codestock/core/assignment"
	"github.com/trezcool/codestock/core/award"
	"github.com/trezcool/codestock/core/material"
	"github.com/trezcool/codestock/core/presence"
	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/core/visit"
)

// DB is the in-memory backing store: one mutex-guarded table per entity,
// mirroring the Postgres schema. It is the default storage in DEV/TEST and
// the test double everywhere else.
type (
	DB struct {
		user       *userTable
		material   *materialTable
		assignment *assignmentTable
		submission *submissionTable
		award      *awardTable
		userAward  *userAwardTable
		visit      *visitTable
		presence   *presenceTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		pk    int
	}

	materialTable struct {
		sync.RWMutex
		table map[int]*material.Material
		pk    int
	}

	assignmentTable struct {
		sync.RWMutex
		table map[int]*assignment.Assignment
		pk    int
	}

	submissionTable struct {
		sync.RWMutex
		table map[int]*assignment.Submission
		pk    int
	}

	awardTable struct {
		sync.RWMutex
		table map[int]*award.Award
		pk    int
	}

	userAwardTable struct {
		sync.RWMutex
		table map[int]*award.UserAward
		pk    int
	}

	visitTable struct {
		sync.RWMutex
		rows []visit.Visit
	}

	presenceTable struct {
		sync.RWMutex
		table map[int]*presence.Entry // keyed by user ID; one entry per user
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		material:   &materialTable{table: make(map[int]*material.Material)},
		assignment: &assignmentTable{table: make(map[int]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[int]*assignment.Submission)},
		award:      &awardTable{table: make(map[int]*award.Award)},
		userAward:  &userAwardTable{table: make(map[int]*award.UserAward)},
		visit:      &visitTable{},
		presence:   &presenceTable{table: make(map[int]*presence.Entry)},
	}
	return db, nil
}
