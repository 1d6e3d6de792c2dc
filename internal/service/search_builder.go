package service

import (
	"context"

	"github.com/atlas-forum/atlas/internal/domain"
)

type SearchStorage interface {
	SearchPosts(ctx context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions, memberId *domain.MemberId) ([]domain.SearchPost, int, error)
}

type SearchModelBuilder struct {
	storage  SearchStorage
	renderer Renderer
}

func NewSearchModelBuilder(storage SearchStorage, renderer Renderer) *SearchModelBuilder {
	return &SearchModelBuilder{storage: storage, renderer: renderer}
}

// BuildSearchPage searches published posts of the given forums. The caller
// passes only the forums the principal can read.
func (b *SearchModelBuilder) BuildSearchPage(ctx context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.SearchPage, error) {
	posts, err := b.SearchPosts(ctx, siteId, forumIds, opts, nil)
	if err != nil {
		return nil, err
	}
	return &domain.SearchPage{Posts: posts}, nil
}

// SearchPosts is shared with the member page, which filters by author.
func (b *SearchModelBuilder) SearchPosts(ctx context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions, memberId *domain.MemberId) (domain.PaginatedData[domain.SearchPost], error) {
	posts, total, err := b.storage.SearchPosts(ctx, siteId, forumIds, opts, memberId)
	if err != nil {
		return domain.PaginatedData[domain.SearchPost]{}, err
	}
	for i := range posts {
		posts[i].Content = b.renderer.ToHtml(posts[i].Content)
	}
	return domain.NewPaginatedData(posts, total, opts.Take()), nil
}
