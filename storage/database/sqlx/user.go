package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core/user"
)

const pqUniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// uniqueViolationError maps a pq unique-constraint violation to the matching
// user sentinel; any other error passes through wrapped.
func uniqueViolationError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		switch pqErr.Constraint {
		case "user_username_key":
			return user.ErrUsernameExists
		case "user_account_id_key":
			return user.ErrAccountIDExists
		case "user_email_uniq":
			return user.ErrEmailExists
		}
	}
	return errors.Wrap(err, "user")
}

func (repo *userRepository) CheckUniqueness(username, accountID, email string, excludedUsers ...user.User) error {
	excluded := make(pq.Int64Array, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded = append(excluded, int64(usr.ID))
	}

	var usr user.User
	query := `SELECT username, account_id, email FROM "user"
              WHERE (username = $1 OR account_id = $2 OR (email <> '' AND email = $3))
                AND NOT (id = ANY($4)) LIMIT 1`
	err := repo.db.Get(&usr, query, username, accountID, email, excluded)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return errors.Wrap(err, "checking uniqueness")
	}

	switch {
	case username != "" && usr.Username == username:
		return user.ErrUsernameExists
	case accountID != "" && usr.AccountID == accountID:
		return user.ErrAccountIDExists
	default:
		return user.ErrEmailExists
	}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	query := `INSERT INTO "user" (username, account_id, email, role, password_hash, created_at, last_login)
              VALUES (:username, :account_id, :email, :role, :password_hash, :created_at, :last_login)
              RETURNING id`
	rows, err := repo.db.NamedQuery(query, usr)
	if err != nil {
		return user.User{}, uniqueViolationError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "scanning user id")
		}
	}
	return usr, errors.Wrap(rows.Err(), "creating user")
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var users []user.User
	err := repo.db.Select(&users, `SELECT * FROM "user" ORDER BY id`)
	return users, errors.Wrap(err, "querying users")
}

func (repo *userRepository) getBy(field, value string) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE `+field+` = $1`, value)
	switch {
	case err == sql.ErrNoRows:
		return user.User{}, user.ErrNotFound
	case err != nil:
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return user.User{}, user.ErrNotFound
	case err != nil:
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getBy("username", username)
}

func (repo *userRepository) GetUserByAccountID(accountID string) (user.User, error) {
	return repo.getBy("account_id", accountID)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getBy("email", email)
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	query := `UPDATE "user"
              SET username = :username, account_id = :account_id, email = :email,
                  role = :role, password_hash = :password_hash, last_login = :last_login
              WHERE id = :id`
	res, err := repo.db.NamedExec(query, usr)
	if err != nil {
		return user.User{}, uniqueViolationError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	pks := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		pks = append(pks, int64(id))
	}
	_, err := repo.db.Exec(`DELETE FROM "user" WHERE id = ANY($1)`, pks)
	return errors.Wrap(err, "deleting users")
}
