package service

import (
	"context"
	"strings"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email domain.Email, password domain.Password) (string, error)
}

type AuthStorage interface {
	GetMemberByEmail(ctx context.Context, email domain.Email) (domain.Member, error)
}

type Jwt interface {
	NewToken(member domain.Member) (string, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

func NewAuth(storage AuthStorage, jwt Jwt) *Auth {
	return &Auth{storage: storage, jwt: jwt}
}

// Login checks the member credentials and returns an access token.
// Unknown email and wrong password produce the same error.
func (a *Auth) Login(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	member, err := a.storage.GetMemberByEmail(ctx, email)
	if err != nil {
		// to not leak existing members
		if internal_errors.IsNotFound(err) {
			return "", internal_errors.Unauthorized("Invalid credentials")
		}
		return "", err
	}
	if member.PasswordHash == "" {
		return "", internal_errors.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		logger.Log.Debug("password verification failed", "member_id", member.Id)
		return "", internal_errors.Unauthorized("Invalid credentials")
	}

	token, err := a.jwt.NewToken(member)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "member_id", member.Id, "error", err)
		return "", err
	}
	return token, nil
}
