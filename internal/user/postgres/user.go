package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-directory/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, first_name, last_name,
	is_staff, is_superuser, is_active, date_joined, last_login`

// Repository stores accounts with hand-written SQL. Queries use ? and are
// rebound for the driver the *sqlx.DB was opened with.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ user.Repository = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User, role *string) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO users
			(username, email, password_hash, first_name, last_name, is_staff, is_superuser, is_active, date_joined)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
		err := tx.QueryRowxContext(ctx, query,
			u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.IsStaff, u.IsSuperuser, u.IsActive, u.DateJoined,
		).Scan(&u.ID)
		if err != nil {
			if conflict := uniqueViolation(err); conflict != nil {
				return conflict
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if role != nil {
			return addToGroup(ctx, tx, u.ID, *role)
		}
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context, q user.ListQuery) ([]*userDatamodel.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if q.IsActive != nil {
		query += ` WHERE is_active = ?`
		args = append(args, *q.IsActive)
	}
	query += ` ORDER BY date_joined DESC, id DESC`

	users := []*userDatamodel.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

type membership struct {
	UserID int64  `db:"user_id"`
	Name   string `db:"name"`
}

// GroupsOf returns group names per user in membership order.
func (r *Repository) GroupsOf(ctx context.Context, userIDs ...int64) (map[int64][]string, error) {
	groups := make(map[int64][]string, len(userIDs))
	if len(userIDs) == 0 {
		return groups, nil
	}

	query, args, err := sqlx.In(`SELECT ug.user_id, g.name
		FROM user_groups ug
		JOIN groups g ON g.id = ug.group_id
		WHERE ug.user_id IN (?)
		ORDER BY ug.user_id, ug.id`, userIDs)
	if err != nil {
		return nil, err
	}

	var rows []membership
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	for _, m := range rows {
		groups[m.UserID] = append(groups[m.UserID], m.Name)
	}
	return groups, nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *Repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER(?))`, email)
}

func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// ReplaceRole drops every HR group membership of the user and adds role, if
// any. Non-HR groups are left alone.
func (r *Repository) ReplaceRole(ctx context.Context, userID int64, role *string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(`DELETE FROM user_groups
			WHERE user_id = ? AND group_id IN (SELECT id FROM groups WHERE name IN (?))`,
			userID, auth.RoleGroups)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("clear roles: %w", err)
		}

		if role != nil {
			return addToGroup(ctx, tx, userID, *role)
		}
		return nil
	})
}

// EnsureGroups inserts missing groups and returns how many were created.
func (r *Repository) EnsureGroups(ctx context.Context, names []string) (int, error) {
	created := 0
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, name := range names {
			n, err := ensureGroup(ctx, tx, name)
			if err != nil {
				return err
			}
			created += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (r *Repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := r.db.GetContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return false, err
	}
	return found, nil
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func ensureGroup(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO groups (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), name)
	if err != nil {
		return 0, fmt.Errorf("ensure group %q: %w", name, err)
	}
	return res.RowsAffected()
}

func addToGroup(ctx context.Context, tx *sqlx.Tx, userID int64, group string) error {
	if _, err := ensureGroup(ctx, tx, group); err != nil {
		return err
	}
	query := tx.Rebind(`INSERT INTO user_groups (user_id, group_id)
		SELECT ?, id FROM groups WHERE name = ?`)
	if _, err := tx.ExecContext(ctx, query, userID, group); err != nil {
		return fmt.Errorf("add to group %q: %w", group, err)
	}
	return nil
}

// uniqueViolation maps a unique index failure on users to the field that
// was taken. It returns nil for any other error.
func uniqueViolation(err error) error {
	var index string
	var pgErr *pgconn.PgError
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		index = pgErr.ConstraintName
	case errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		index = liteErr.Error()
	default:
		return nil
	}

	taken := user.UsernameTaken
	if strings.Contains(index, "email") {
		taken = user.EmailTaken
	}
	return user.NewConflictError(taken).WithCause(err)
}
