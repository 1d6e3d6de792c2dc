package service

import (
	"context"

	"github.com/atlas-forum/atlas/internal/domain"
)

type IndexStorage interface {
	GetIndex(ctx context.Context, siteId domain.SiteId) ([]domain.IndexCategory, error)
}

type IndexModelBuilder struct {
	storage IndexStorage
}

func NewIndexModelBuilder(storage IndexStorage) *IndexModelBuilder {
	return &IndexModelBuilder{storage: storage}
}

// BuildIndexPage lists categories with the forums readable says can be shown.
// Categories left without forums are dropped.
func (b *IndexModelBuilder) BuildIndexPage(ctx context.Context, site domain.Site, readable func(domain.ForumId) bool) (*domain.IndexPage, error) {
	categories, err := b.storage.GetIndex(ctx, site.Id)
	if err != nil {
		return nil, err
	}
	page := &domain.IndexPage{Site: site, Categories: []domain.IndexCategory{}}
	for _, c := range categories {
		var forums []domain.IndexForum
		for _, f := range c.Forums {
			if readable(f.Id) {
				forums = append(forums, f)
			}
		}
		if len(forums) == 0 {
			continue
		}
		c.Forums = forums
		page.Categories = append(page.Categories, c)
	}
	return page, nil
}
