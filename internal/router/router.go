package router

import (
	"net/http"
	"time"

	"github.com/atlas-forum/atlas/internal/setup"
	mw "github.com/atlas-forum/atlas/internal/middleware"
	rl "github.com/atlas-forum/atlas/internal/middleware/ratelimiter"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the route table.
// Rate limiters passed to Use count requests of every route of that group together.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(cfg.Public.SecureCookies))

	h := deps.Handler
	auth := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(mw.RateLimit(rl.New(1, 5, time.Hour), mw.MemberOrIP)).Post("/login", h.Login) // 1 per second by IP, bursts of 5
		r.Post("/logout", h.Logout)
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(auth.OptionalAuth())

		r.Get("/index-model", h.GetIndex)
		r.Get("/forums/{forum}", h.GetForum)
		r.Get("/search", h.Search)
		r.Get("/members", h.GetMembers)
		r.With(auth.NeedAuth()).Get("/members/me", h.GetMe)
		r.Get("/members/{member}", h.GetMember)

		r.Route("/topics", func(r chi.Router) {
			r.Get("/{forum}/{topic}", h.GetTopic)
			r.Get("/{forum}/{topic}/replies", h.GetTopicReplies)

			r.Group(func(r chi.Router) {
				r.Use(auth.NeedAuth())
				r.Get("/{forum}/new-topic", h.NewTopic)
				r.Get("/{forum}/edit-topic/{topic}", h.EditTopic)

				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimit(rl.PerMinute(30), mw.MemberOrIP))
					r.Post("/create-topic", h.CreateTopic)
					r.Post("/update-topic", h.UpdateTopic)
				})
				r.Post("/pin-topic/{forum}/{topic}", h.PinTopic)
				r.Post("/lock-topic/{forum}/{topic}", h.LockTopic)
				r.Delete("/delete-topic/{forum}/{topic}", h.DeleteTopic)
			})
		})

		r.Route("/replies", func(r chi.Router) {
			r.Use(auth.NeedAuth())
			r.With(mw.RateLimit(rl.PerMinute(60), mw.MemberOrIP)).Post("/create-reply", h.CreateReply)
			r.Post("/set-answer/{forum}/{topic}/{reply}", h.SetAnswer)
		})
	})

	return r
}
