package service

import (
	"context"
	"fmt"

	"github.com/atlas-forum/atlas/internal/cache"
	"github.com/atlas-forum/atlas/internal/domain"
)

type ForumStorage interface {
	GetForumBySlug(ctx context.Context, siteId domain.SiteId, slug domain.Slug) (domain.Forum, error)
	GetForumTopics(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, opts domain.QueryOptions) ([]domain.ForumTopicItem, int, error)
}

// ForumModelBuilder builds the topic listing of a forum. Forum lookups by slug
// go through the memoizer since forums rarely change.
type ForumModelBuilder struct {
	storage ForumStorage
	forums  *cache.Memoizer[domain.Forum]
}

func NewForumModelBuilder(storage ForumStorage, forums *cache.Memoizer[domain.Forum]) *ForumModelBuilder {
	return &ForumModelBuilder{storage: storage, forums: forums}
}

// Forum resolves a forum of the site by slug.
func (b *ForumModelBuilder) Forum(ctx context.Context, siteId domain.SiteId, slug domain.Slug) (domain.Forum, error) {
	key := fmt.Sprintf("forum:%s:%s", siteId, slug)
	return b.forums.GetOrLoad(ctx, key, func(ctx context.Context) (domain.Forum, error) {
		return b.storage.GetForumBySlug(ctx, siteId, slug)
	})
}

func (b *ForumModelBuilder) BuildForumPage(ctx context.Context, siteId domain.SiteId, forumSlug domain.Slug, opts domain.QueryOptions) (*domain.ForumPage, error) {
	forum, err := b.Forum(ctx, siteId, forumSlug)
	if err != nil {
		return nil, err
	}
	topics, total, err := b.storage.GetForumTopics(ctx, siteId, forum.Id, opts)
	if err != nil {
		return nil, err
	}
	return &domain.ForumPage{
		Forum: domain.ForumView{
			Id:          forum.Id,
			Name:        forum.Name,
			Slug:        forum.Slug,
			Description: forum.Description,
		},
		Topics: domain.NewPaginatedData(topics, total, opts.Take()),
	}, nil
}
