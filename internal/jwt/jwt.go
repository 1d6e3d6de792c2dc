package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtService interface {
	NewToken(member domain.Member) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
	MemberId(jwtStr string) (domain.MemberId, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey, ttl}
}

// NewToken issues a token whose uid claim is the member id.
func (j *Jwt) NewToken(member domain.Member) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid": member.Id.String(),
		"iat": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", errors.New("Can't create token")
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal_errors.Unauthorized(fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]))
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, internal_errors.Unauthorized("Invalid token signature")
	}
	if !token.Valid {
		return nil, internal_errors.Unauthorized("Invalid access token")
	}
	return token, nil
}

// MemberId decodes the token and returns its uid claim.
func (j *Jwt) MemberId(jwtStr string) (domain.MemberId, error) {
	token, err := j.DecodeToken(jwtStr)
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, internal_errors.Unauthorized("Invalid token claims")
	}
	raw, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, internal_errors.Unauthorized("Invalid token claims")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, internal_errors.Unauthorized("Invalid token claims")
	}
	return id, nil
}
