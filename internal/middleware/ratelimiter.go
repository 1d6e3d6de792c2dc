package middleware

import (
	"net/http"

	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/middleware/ratelimiter"
	"github.com/atlas-forum/atlas/internal/utils"
)

func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				rateLimited.WithLabelValues(routeLabel(r)).Inc()
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemberOrIP identifies authenticated requests by member and the rest by client IP.
func MemberOrIP(r *http.Request) (string, error) {
	if id := MemberIdFromContext(r.Context()); id != nil {
		return "member_" + id.String(), nil
	}
	ip, err := utils.GetIP(r)
	if err != nil {
		return "", internal_errors.BadRequest("Can't identify client")
	}
	return "ip_" + ip, nil
}
