package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/query"
	"github.com/iliyamo/bootcamp-directory/internal/utils"
)

// UserFields is the allow-list for the admin user list endpoint. The
// password hash is deliberately not exposed.
var UserFields = query.FieldMap{
	"id":        "t.id",
	"name":      "t.name",
	"email":     "t.email",
	"role":      "t.role",
	"createdAt": "t.created_at",
}

const userCols = "id, name, email, password_hash, role, created_at"

type UserRepo struct {
	DB     *sql.DB
	lister Lister
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{
		DB:     db,
		lister: Lister{DB: db, Table: "users", Fields: UserFields},
	}
}

// List runs a parsed query-builder request.
func (r *UserRepo) List(ctx context.Context, lq *query.ListQuery) ([]map[string]any, int64, error) {
	return r.lister.List(ctx, lq, nil)
}

// Create inserts a user with a hashed password and returns its id.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		u.Name, u.Email, hash, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// Update persists name, email and role. An empty newPassword keeps
// the stored hash.
func (r *UserRepo) Update(ctx context.Context, u *model.User, newPassword string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if newPassword != "" {
		hash, err := utils.HashPassword(newPassword, cost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, role=? WHERE id=?",
		u.Name, u.Email, u.PasswordHash, u.Role, u.ID)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Delete removes the user.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
