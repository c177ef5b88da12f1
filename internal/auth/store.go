// Package auth implements user accounts and bearer-token handling.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// User is an account row without the password hash.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists users in the shared SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Store) Register(ctx context.Context, email, username, password, fullName string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return User{}, errors.New("email and username are required")
	}
	if len(password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, username, hashed_password, full_name) VALUES (?, ?, ?, ?)`,
		email, username, string(hash), fullName,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("failed to read user id: %w", err)
	}

	return s.byID(ctx, id)
}

// Authenticate verifies the password for the account and returns it.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, COALESCE(full_name, ''), is_active, created_at
		 FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.Username, &user.FullName, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}

	hash, err = s.passwordHash(ctx, user.ID)
	if err != nil {
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ByEmail resolves an account for token validation.
func (s *Store) ByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, COALESCE(full_name, ''), is_active, created_at
		 FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user.ID, &user.Email, &user.Username, &user.FullName, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *Store) byID(ctx context.Context, id int64) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, COALESCE(full_name, ''), is_active, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Email, &user.Username, &user.FullName, &user.IsActive, &user.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *Store) passwordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	if err := s.db.QueryRowContext(ctx,
		`SELECT hashed_password FROM users WHERE id = ?`, id,
	).Scan(&hash); err != nil {
		return "", fmt.Errorf("failed to load password hash: %w", err)
	}
	return hash, nil
}
