package user

import (
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAccountIDExists      = errors.New("a user with this account ID already exists")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")

	nowFunc = time.Now // mockable
)

// enumerationDecoy is a well-formed credential that no password hashes to.
// Authenticate derives a key against it when the username is unknown so that
// "unknown user" and "wrong password" cost the same.
const enumerationDecoy = "b5f2a9c4e8d1760354fa9b82ce07d6134e5a0f7c29b8d16043fe7a5c90b2d8e1" +
	"6a4c3f90e7b5d2081c6a4e9f3b7d50218e6c4a2f9d7b3e50816c4a2e9f7d3b50" +
	".4f8a2c6e0b9d73154e8a2c6f0b9d7315"

type Repository interface {
	// CheckUniqueness returns ErrUsernameExists, ErrAccountIDExists or
	// ErrEmailExists when another user (not in excludedUsers) already holds
	// one of the given identifiers. Empty identifiers are skipped.
	CheckUniqueness(username, accountID, email string, excludedUsers ...User) error
	CreateUser(usr User) (User, error)
	QueryAllUsers() ([]User, error)
	GetUserByID(id int) (User, error)
	GetUserByUsername(username string) (User, error)
	GetUserByAccountID(accountID string) (User, error)
	GetUserByEmail(email string) (User, error)
	UpdateUser(usr User) (User, error)
	DeleteUsersByID(ids ...int) error
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
	logger  core.Logger
}

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *Service) CheckUniqueness(uname, accountID, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(uname, accountID, email, exclUsers...); err != nil {
		return duplicateError(err)
	}
	return nil
}

// duplicateError maps repository uniqueness rejections to field-level
// validation errors. Anything else passes through untouched.
func duplicateError(err error) error {
	var field string
	switch errors.Cause(err) {
	case ErrUsernameExists:
		field = "username"
	case ErrAccountIDExists:
		field = "account_id"
	case ErrEmailExists:
		field = "email"
	default:
		return err
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
}

// Create registers a new user. The uniqueness pre-check in NewUser.Validate is
// best-effort only; the repository's own rejection under a concurrent duplicate
// registration maps to the same validation error here.
func (svc *Service) Create(nu NewUser) (User, error) {
	role := nu.Role
	if role == "" {
		role = RoleStudent
	}
	usr := User{
		Username:  nu.Username,
		AccountID: nu.AccountID,
		Email:     nu.Email,
		Role:      role,
		CreatedAt: nowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, duplicateError(err)
	}
	return usr, nil
}

// Authenticate checks the credentials and records the login time.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (svc *Service) Authenticate(uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			_, _, _ = CheckPassword(pwd, enumerationDecoy)
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}

	ok, legacy, err := usr.CheckPassword(pwd)
	if err != nil {
		return User{}, errors.Wrap(err, "checking password")
	}
	if !ok {
		return User{}, ErrAuthenticationFailed
	}
	if legacy {
		if err = usr.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "re-hashing legacy credential")
		}
	}

	usr.LastLogin = nowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(usr); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByAccountID(accountID string) (User, error) {
	return svc.repo.GetUserByAccountID(core.CleanString(accountID))
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *Service) sendPasswordResetMail(usr User) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: struct {
			Username string
			UID      string
			Token    string
		}{usr.Username, EncodeUID(usr), makeToken(usr)},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *Service) ResetPassword(rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	if _, err = svc.repo.UpdateUser(usr); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}
