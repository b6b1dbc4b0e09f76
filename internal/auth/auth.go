// Package auth verifies credentials against the local user store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"despesas/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("e-mail ou senha inválidos")
	ErrPasswordTooShort   = errors.New("a senha deve ter no mínimo 6 caracteres")
)

const minPasswordLength = 6

// Provider authenticates a login attempt and returns the user id.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// LocalProvider checks bcrypt hashes stored in the repository. Every
// successful login also refreshes the plaintext mirror row.
type LocalProvider struct {
	repo *storage.Repository
}

func NewLocalProvider(repo *storage.Repository) *LocalProvider {
	return &LocalProvider{repo: repo}
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if err := p.repo.UpsertPasswordMirror(ctx, u.ID, u.Email, password); err != nil {
		return "", fmt.Errorf("refresh password mirror: %w", err)
	}
	return u.ID, nil
}

// ChangePassword verifies the current password before storing the new
// one. The new password must have at least 6 characters.
func (p *LocalProvider) ChangePassword(ctx context.Context, email, current, next string) error {
	if utf8.RuneCountInString(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	userID, err := p.Authenticate(ctx, email, current)
	if err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	if err := p.repo.UpsertPasswordMirror(ctx, userID, email, next); err != nil {
		return fmt.Errorf("refresh password mirror: %w", err)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
