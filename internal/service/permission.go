package service

import (
	"context"
	"sort"

	"github.com/atlas-forum/atlas/internal/domain"
)

type PermissionStorage interface {
	GetPermissionSet(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error)
	GetPermissionSets(ctx context.Context, siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error)
}

// PermissionModelBuilder resolves the grants of a principal. Results are
// computed per call and never cached.
type PermissionModelBuilder struct {
	storage PermissionStorage
}

func NewPermissionModelBuilder(storage PermissionStorage) *PermissionModelBuilder {
	return &PermissionModelBuilder{storage: storage}
}

func (b *PermissionModelBuilder) BuildPermissionSet(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error) {
	return b.storage.GetPermissionSet(ctx, siteId, forumId, principal)
}

func (b *PermissionModelBuilder) BuildPermissionSets(ctx context.Context, siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error) {
	return b.storage.GetPermissionSets(ctx, siteId, principal)
}

// ReadableForums returns the forums of the site the principal may read, in a stable order.
func (b *PermissionModelBuilder) ReadableForums(ctx context.Context, siteId domain.SiteId, principal domain.Principal) ([]domain.ForumId, error) {
	sets, err := b.BuildPermissionSets(ctx, siteId, principal)
	if err != nil {
		return nil, err
	}
	var ids []domain.ForumId
	for id, set := range sets {
		if CanRead(set) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}
