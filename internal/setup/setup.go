package setup

import (
	"context"
	"errors"

	"github.com/atlas-forum/atlas/internal/cache"
	"github.com/atlas-forum/atlas/internal/config"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/handler"
	"github.com/atlas-forum/atlas/internal/jwt"
	"github.com/atlas-forum/atlas/internal/logger"
	"github.com/atlas-forum/atlas/internal/markdown"
	"github.com/atlas-forum/atlas/internal/middleware"
	"github.com/atlas-forum/atlas/internal/service"
	"github.com/atlas-forum/atlas/internal/storage/pg"

	"github.com/redis/go-redis/v9"
)

// Dependencies holds everything the router and main need.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Jwt            jwt.JwtService
	redis          *redis.Client
}

// SetupDependencies connects to postgres (and redis when configured) and builds the services.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Config: cfg, Storage: storage}

	sites, forums, err := deps.caches(ctx)
	if err != nil {
		_ = storage.Cleanup()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	auth := middleware.NewAuth(jwtService, cfg.Public.SecureCookies)
	renderer := markdown.New()
	search := service.NewSearchModelBuilder(storage, renderer)

	h := handler.New(handler.Services{
		Context:     service.NewContextService(storage, sites, cfg.Public.DefaultSite),
		Permissions: service.NewPermissionModelBuilder(storage),
		Targets:     storage,
		Topics:      service.NewTopic(storage),
		Replies:     service.NewReply(storage),
		Auth:        service.NewAuth(storage, jwtService),
		TopicPages:  service.NewTopicModelBuilder(storage, renderer),
		PostPages:   service.NewPostModelBuilder(storage),
		ForumPages:  service.NewForumModelBuilder(storage, forums),
		SearchPages: search,
		MemberPages: service.NewMemberModelBuilder(storage, search),
		IndexPages:  service.NewIndexModelBuilder(storage),
		Health:      storage,
	}, auth, cfg)

	deps.Handler = h
	deps.AuthMiddleware = auth
	deps.Jwt = jwtService
	return deps, nil
}

// caches memoizes sites and forums in redis, or in process when no redis address is set.
func (d *Dependencies) caches(ctx context.Context) (*cache.Memoizer[domain.Site], *cache.Memoizer[domain.Forum], error) {
	ttl := d.Config.CacheTTL()
	r := d.Config.Private.Redis
	if r.Addr == "" {
		logger.Log.Info("using in-process cache")
		return cache.NewMemoizer[domain.Site](cache.NewMemory[domain.Site](ttl), ttl),
			cache.NewMemoizer[domain.Forum](cache.NewMemory[domain.Forum](ttl), ttl),
			nil
	}

	client, err := cache.Connect(ctx, r.Addr, r.Password, r.DB)
	if err != nil {
		return nil, nil, err
	}
	d.redis = client
	logger.Log.Info("using redis cache", "addr", r.Addr)
	return cache.NewMemoizer[domain.Site](cache.NewRedis[domain.Site](client, "atlas", ttl), ttl),
		cache.NewMemoizer[domain.Forum](cache.NewRedis[domain.Forum](client, "atlas", ttl), ttl),
		nil
}

// Close releases the database and redis connections.
func (d *Dependencies) Close() error {
	var errs []error
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.Storage != nil {
		errs = append(errs, d.Storage.Cleanup())
	}
	return errors.Join(errs...)
}
