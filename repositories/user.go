//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"live-poll/domain"
	"live-poll/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, name, email, hashedPassword string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id domain.UserID) (User, error)
}

// User is the repository-level representation of an account.
type User struct {
	ID           domain.UserID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type diskUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"hash"`
	CreatedAt    int64  `json:"t"`
}

func emailKey(email string) []byte { return []byte("email:" + normalizeEmail(email)) }

func userKey(id domain.UserID) []byte { return []byte("user:" + string(id)) }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// CreateUser persists the user and its email index in one transaction.
// The password must already be hashed.
func (u *UserRepository) CreateUser(ctx context.Context, name, email, hashedPassword string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	user := User{
		ID:           domain.UserID(uuid.New().String()),
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(diskUser{
		ID:           string(user.ID),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UnixNano(),
	})
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if errors.Is(err, badger.ErrConflict) {
		// Someone registered the same email concurrently.
		return User{}, errors.ErrUserAlreadyExists
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = readUser(txn, domain.UserID(id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	return user, err
}

func (u *UserRepository) GetUserByID(ctx context.Context, id domain.UserID) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = readUser(txn, id)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	return user, err
}

func readUser(txn *badger.Txn, id domain.UserID) (User, error) {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return User{}, err
	}
	var du diskUser
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &du)
	})
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           domain.UserID(du.ID),
		Name:         du.Name,
		Email:        du.Email,
		PasswordHash: du.PasswordHash,
		CreatedAt:    time.Unix(0, du.CreatedAt).UTC(),
	}, nil
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) IUserRepository {
	return &PostgresUserRepository{db: db}
}

func (p *PostgresUserRepository) CreateUser(ctx context.Context, name, email, hashedPassword string) (User, error) {
	user := User{
		ID:           domain.UserID(uuid.New().String()),
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO app_user (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, errors.ErrUserAlreadyExists
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: insert user: %v", errors.ErrStoreUnavailable, err)
	}
	return user, nil
}

func (p *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return p.scanOne(ctx, `
		SELECT id, name, email, password_hash, created_at FROM app_user WHERE email = $1
	`, normalizeEmail(email))
}

func (p *PostgresUserRepository) GetUserByID(ctx context.Context, id domain.UserID) (User, error) {
	return p.scanOne(ctx, `
		SELECT id, name, email, password_hash, created_at FROM app_user WHERE id = $1
	`, string(id))
}

func (p *PostgresUserRepository) scanOne(ctx context.Context, query string, arg string) (User, error) {
	var user User
	err := p.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
