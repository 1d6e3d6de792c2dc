package service

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/atlas-forum/atlas/internal/cache"
	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"
)

type ContextStorage interface {
	GetSiteByHost(ctx context.Context, host string) (domain.Site, error)
	GetSiteByName(ctx context.Context, name string) (domain.Site, error)
	GetMemberById(ctx context.Context, id domain.MemberId) (domain.Member, error)
}

// ContextService resolves who and where a request is. Sites are memoized,
// members are loaded on every call so role changes apply immediately.
type ContextService struct {
	storage     ContextStorage
	sites       *cache.Memoizer[domain.Site]
	defaultSite string
}

func NewContextService(storage ContextStorage, sites *cache.Memoizer[domain.Site], defaultSite string) *ContextService {
	return &ContextService{storage: storage, sites: sites, defaultSite: defaultSite}
}

const defaultSiteKey = "site:default"

// CurrentSite resolves the site serving host, falling back to the default site.
// Only hosts that match a site get their own cache entry, so arbitrary Host
// headers cannot grow the cache.
func (s *ContextService) CurrentSite(ctx context.Context, host string) (domain.Site, error) {
	host = normalizeHost(host)
	if host != "" {
		site, err := s.sites.GetOrLoad(ctx, "site:"+host, func(ctx context.Context) (domain.Site, error) {
			return s.storage.GetSiteByHost(ctx, host)
		})
		if err == nil {
			return site, nil
		}
		if !internal_errors.IsNotFound(err) {
			return domain.Site{}, err
		}
	}

	return s.sites.GetOrLoad(ctx, defaultSiteKey, func(ctx context.Context) (domain.Site, error) {
		site, err := s.storage.GetSiteByName(ctx, s.defaultSite)
		if err != nil {
			// no site means nothing can be scoped, this is a server fault
			logger.Log.Error("failed to resolve default site", "host", host, "default_site", s.defaultSite, "error", err)
			return domain.Site{}, fmt.Errorf("resolve default site %q: %s", s.defaultSite, err.Error())
		}
		return site, nil
	})
}

// CurrentMember loads the member behind an authenticated request, or nil when anonymous.
// A token for a member that no longer exists is treated as anonymous.
func (s *ContextService) CurrentMember(ctx context.Context, id *domain.MemberId) (*domain.Member, error) {
	if id == nil {
		return nil, nil
	}
	member, err := s.storage.GetMemberById(ctx, *id)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
