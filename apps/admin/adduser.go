package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, accountID, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	role := user.RoleStudent
	if isAdmin {
		role = user.RoleAdmin
	}

	usr, err := cli.usrRepo.GetUserByUsername(uname)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			Username:  uname,
			AccountID: accountID,
			Email:     email,
			Password:  pwd,
			Role:      role,
		})
		return err
	}

	usr.Email = email
	usr.Role = role
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
