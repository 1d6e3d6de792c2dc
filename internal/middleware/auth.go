package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/utils"
)

const AccessTokenCookie = "accessToken"

// Key to store the member id in the request context
type key int

const memberIdKey key = 0

type TokenDecoder interface {
	MemberId(jwtStr string) (domain.MemberId, error)
}

// Auth reads the access token from the cookie or the Authorization header.
type Auth struct {
	jwt           TokenDecoder
	secureCookies bool
}

func NewAuth(jwt TokenDecoder, secureCookies bool) *Auth {
	return &Auth{jwt: jwt, secureCookies: secureCookies}
}

// NeedAuth rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}
			id, err := a.jwt.MemberId(token)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithMemberId(r.Context(), id)))
		})
	}
}

// OptionalAuth populates the member id if the token is valid and lets anonymous requests through.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFrom(r); token != "" {
				if id, err := a.jwt.MemberId(token); err == nil {
					r = r.WithContext(WithMemberId(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) SetAccessCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) ClearAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}

func WithMemberId(ctx context.Context, id domain.MemberId) context.Context {
	return context.WithValue(ctx, memberIdKey, id)
}

// MemberIdFromContext returns the authenticated member id, or nil for anonymous requests.
func MemberIdFromContext(ctx context.Context) *domain.MemberId {
	id, ok := ctx.Value(memberIdKey).(domain.MemberId)
	if !ok {
		return nil
	}
	return &id
}
