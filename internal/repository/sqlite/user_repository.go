package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL UNIQUE,
	phone_number TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	salt TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'user',
	current_token TEXT NOT NULL DEFAULT '',
	disabled INTEGER NOT NULL DEFAULT 0,
	remark TEXT NOT NULL DEFAULT '',
	last_login_time DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

var userTable = table[domain.User]{
	name: "users",
	columns: "id, user_name, phone_number, password_hash, salt, role, " +
		"current_token, disabled, remark, last_login_time, created_at, updated_at",
	scan: scanUser,
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	var (
		res sql.Result
		err error
	)
	if user.ID != 0 {
		res, err = r.db.ExecContext(ctx, `
INSERT INTO users (id, user_name, phone_number, password_hash, salt, role, current_token, disabled, remark, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.UserName, user.PhoneNumber, user.PasswordHash, user.Salt,
			user.Role, user.CurrentToken, boolToInt(user.Disabled), user.Remark,
			user.CreatedAt, user.UpdatedAt,
		)
	} else {
		res, err = r.db.ExecContext(ctx, `
INSERT INTO users (user_name, phone_number, password_hash, salt, role, current_token, disabled, remark, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.UserName, user.PhoneNumber, user.PasswordHash, user.Salt,
			user.Role, user.CurrentToken, boolToInt(user.Disabled), user.Remark,
			user.CreatedAt, user.UpdatedAt,
		)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return selectOne(ctx, r.db, userTable, Where("id = ?", id))
}

func (r *UserRepository) GetByUserName(ctx context.Context, name string) (*domain.User, error) {
	return selectOne(ctx, r.db, userTable, Where("user_name = ?", name))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return selectOne(ctx, r.db, userTable, Where("phone_number = ?", phone))
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	var lastLogin any
	if !user.LastLoginTime.IsZero() {
		lastLogin = user.LastLoginTime
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET user_name = ?, phone_number = ?, password_hash = ?, salt = ?, role = ?,
    current_token = ?, disabled = ?, remark = ?, last_login_time = ?, updated_at = ?
WHERE id = ?`,
		user.UserName, user.PhoneNumber, user.PasswordHash, user.Salt, user.Role,
		user.CurrentToken, boolToInt(user.Disabled), user.Remark, lastLogin,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) SetCurrentToken(ctx context.Context, id int64, token string, loginAt *time.Time) error {
	var (
		res sql.Result
		err error
	)
	now := time.Now().UTC()
	if loginAt != nil {
		res, err = r.db.ExecContext(ctx, `
UPDATE users SET current_token = ?, last_login_time = ?, updated_at = ? WHERE id = ?`,
			token, loginAt.UTC(), now, id)
	} else {
		res, err = r.db.ExecContext(ctx, `
UPDATE users SET current_token = ?, updated_at = ? WHERE id = ?`,
			token, now, id)
	}
	if err != nil {
		return fmt.Errorf("set current token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set current token rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set current token for user %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, nameLike string, pageNum, pageSize int) ([]domain.User, domain.Page, error) {
	var preds []Pred
	if nameLike != "" {
		preds = append(preds, Where("user_name LIKE ?", "%"+nameLike+"%"))
	}
	return selectPage(ctx, r.db, userTable, pageNum, pageSize, "id DESC", preds...)
}

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u         domain.User
		disabled  int
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.PhoneNumber,
		&u.PasswordHash,
		&u.Salt,
		&u.Role,
		&u.CurrentToken,
		&disabled,
		&u.Remark,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}
	u.Disabled = disabled != 0
	if lastLogin.Valid {
		u.LastLoginTime = lastLogin.Time
	}
	return u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
