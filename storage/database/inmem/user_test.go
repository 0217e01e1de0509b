package inmemdb

import (
	"testing"

	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/tests"
)

func TestUserRepository_CreateUser_duplicates(t *testing.T) {
	db, _ := Open()
	repo := NewUserRepository(db)

	testutil.CreateUser(t, repo, "alice", "ST001", "alice@test.cd", "", user.RoleStudent)

	tests := []struct {
		name    string
		usr     user.User
		wantErr error
	}{
		{name: "duplicate username", usr: user.User{Username: "alice", AccountID: "ST002"}, wantErr: user.ErrUsernameExists},
		{name: "duplicate account ID", usr: user.User{Username: "bob", AccountID: "ST001"}, wantErr: user.ErrAccountIDExists},
		{name: "duplicate email", usr: user.User{Username: "bob", AccountID: "ST002", Email: "alice@test.cd"}, wantErr: user.ErrEmailExists},
		{name: "empty emails do not collide", usr: user.User{Username: "bob", AccountID: "ST002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateUser(tt.usr)
			if err != tt.wantErr {
				t.Errorf("CreateUser() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserRepository_GetUserBy(t *testing.T) {
	db, _ := Open()
	repo := NewUserRepository(db)

	usr := testutil.CreateUser(t, repo, "alice", "ST001", "alice@test.cd", "", user.RoleStudent)

	if got, err := repo.GetUserByUsername("alice"); err != nil || got.ID != usr.ID {
		t.Errorf("GetUserByUsername() = %+v, %v", got, err)
	}
	if got, err := repo.GetUserByAccountID("ST001"); err != nil || got.ID != usr.ID {
		t.Errorf("GetUserByAccountID() = %+v, %v", got, err)
	}
	if got, err := repo.GetUserByEmail("alice@test.cd"); err != nil || got.ID != usr.ID {
		t.Errorf("GetUserByEmail() = %+v, %v", got, err)
	}
	if _, err := repo.GetUserByUsername("nobody"); err != user.ErrNotFound {
		t.Errorf("GetUserByUsername(unknown) error = %v; want %v", err, user.ErrNotFound)
	}
	if _, err := repo.GetUserByEmail(""); err != user.ErrNotFound {
		t.Errorf("GetUserByEmail(\"\") error = %v; want %v", err, user.ErrNotFound)
	}
}
