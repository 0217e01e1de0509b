package user

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
)

type fakeRepo struct {
	users map[int]User
	pk    int
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int]User)}
}

func (r *fakeRepo) CheckUniqueness(uname, accountID, email string, excl ...User) error {
	excluded := make(map[int]bool, len(excl))
	for _, usr := range excl {
		excluded[usr.ID] = true
	}
	for _, usr := range r.users {
		if excluded[usr.ID] {
			continue
		}
		switch {
		case uname != "" && usr.Username == uname:
			return ErrUsernameExists
		case accountID != "" && usr.AccountID == accountID:
			return ErrAccountIDExists
		case email != "" && usr.Email == email:
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateUser(usr User) (User, error) {
	if err := r.CheckUniqueness(usr.Username, usr.AccountID, usr.Email); err != nil {
		return User{}, err
	}
	r.pk++
	usr.ID = r.pk
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepo) QueryAllUsers() ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, usr)
	}
	return users, nil
}

func (r *fakeRepo) GetUserByID(id int) (User, error) {
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByUsername(uname string) (User, error) {
	for _, usr := range r.users {
		if usr.Username == uname {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByAccountID(accountID string) (User, error) {
	for _, usr := range r.users {
		if usr.AccountID == accountID {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(email string) (User, error) {
	for _, usr := range r.users {
		if email != "" && usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) UpdateUser(usr User) (User, error) {
	if _, ok := r.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepo) DeleteUsersByID(ids ...int) error {
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

type fakeMailSvc struct {
	sent []*core.EmailMessage
}

func (svc *fakeMailSvc) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

func newTestService() (*Service, *fakeRepo, *fakeMailSvc) {
	repo := newFakeRepo()
	mailSvc := &fakeMailSvc{}
	return NewService(repo, mailSvc, nopLogger{}), repo, mailSvc
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService()

	usr, err := svc.Create(NewUser{Username: "alice", AccountID: "ST001", Password: "secret123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if usr.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if usr.Role != RoleStudent {
		t.Errorf("Create() role = %q; want default %q", usr.Role, RoleStudent)
	}
	if usr.PasswordHash == "secret123" || !strings.Contains(usr.PasswordHash, ".") {
		t.Error("Create() stored a non-hashed credential")
	}

	// duplicates map to a field-level validation error
	_, err = svc.Create(NewUser{Username: "alice", AccountID: "ST002", Password: "secret123"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() duplicate error = %v; want ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "username" {
		t.Errorf("Create() duplicate fields = %+v; want username", vErr.Fields)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, repo, _ := newTestService()

	usr, err := svc.Create(NewUser{Username: "alice", AccountID: "ST001", Password: "secret123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !usr.LastLogin.IsZero() {
		t.Fatal("fresh user already has a LastLogin")
	}

	authed, err := svc.Authenticate("Alice ", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if authed.ID != usr.ID {
		t.Errorf("Authenticate() user = %d; want %d", authed.ID, usr.ID)
	}
	if authed.LastLogin.IsZero() {
		t.Error("Authenticate() did not set LastLogin")
	}

	// unknown user and wrong password are indistinguishable
	if _, err = svc.Authenticate("alice", "wrong"); errors.Cause(err) != ErrAuthenticationFailed {
		t.Errorf("Authenticate() wrong password error = %v; want %v", err, ErrAuthenticationFailed)
	}
	if _, err = svc.Authenticate("nobody", "secret123"); errors.Cause(err) != ErrAuthenticationFailed {
		t.Errorf("Authenticate() unknown user error = %v; want %v", err, ErrAuthenticationFailed)
	}

	// a stored plaintext credential still authenticates and is re-hashed
	legacy := User{Username: "bob", AccountID: "ST002", PasswordHash: "hunter2", CreatedAt: time.Now().UTC()}
	legacy, err = repo.CreateUser(legacy)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	authed, err = svc.Authenticate("bob", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() legacy error = %v", err)
	}
	if authed.PasswordHash == "hunter2" || !strings.Contains(authed.PasswordHash, ".") {
		t.Error("Authenticate() did not re-hash the legacy credential")
	}
	stored, _ := repo.GetUserByID(legacy.ID)
	if stored.PasswordHash == "hunter2" {
		t.Error("legacy credential still stored in plaintext")
	}
	if ok, _, _ := stored.CheckPassword("hunter2"); !ok {
		t.Error("re-hashed credential no longer matches the password")
	}
}

func TestService_PasswordReset(t *testing.T) {
	svc, repo, mailSvc := newTestService()

	usr, err := svc.Create(NewUser{Username: "alice", AccountID: "ST001", Email: "alice@test.cd", Password: "secret123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err = svc.RequestPasswordReset("alice@test.cd"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	if len(mailSvc.sent) != 1 {
		t.Fatalf("RequestPasswordReset() sent %d messages; want 1", len(mailSvc.sent))
	}

	if err = svc.RequestPasswordReset("nobody@test.cd"); errors.Cause(err) != ErrNotFound {
		t.Errorf("RequestPasswordReset() unknown email error = %v; want %v", err, ErrNotFound)
	}

	token := makeToken(usr)
	rp := ResetUserPassword{UID: EncodeUID(usr), Token: token, Password: "n3ws3cr3t", PasswordConfirm: "n3ws3cr3t"}
	if err = svc.ResetPassword(rp); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	stored, _ := repo.GetUserByID(usr.ID)
	if ok, _, _ := stored.CheckPassword("n3ws3cr3t"); !ok {
		t.Error("ResetPassword() did not set the new password")
	}

	// the token died with the old password hash
	err = svc.ResetPassword(rp)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("ResetPassword() reuse error = %v; want ValidationError", err)
	}
}
