package service

import (
	"context"

	"github.com/atlas-forum/atlas/internal/domain"
)

type PostStorage interface {
	GetForumById(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error)
	GetTopic(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.PostWithAuthor, error)
}

// PostModelBuilder builds the editor pages. Content is left raw.
type PostModelBuilder struct {
	storage PostStorage
}

func NewPostModelBuilder(storage PostStorage) *PostModelBuilder {
	return &PostModelBuilder{storage: storage}
}

func (b *PostModelBuilder) BuildNewPostPage(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId) (*domain.PostPage, error) {
	forum, err := b.storage.GetForumById(ctx, siteId, forumId)
	if err != nil {
		return nil, err
	}
	return &domain.PostPage{Forum: domain.ForumRef{Id: forum.Id, Name: forum.Name, Slug: forum.Slug}}, nil
}

func (b *PostModelBuilder) BuildEditPostPage(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (*domain.PostPage, error) {
	forum, err := b.storage.GetForumById(ctx, siteId, forumId)
	if err != nil {
		return nil, err
	}
	topic, err := b.storage.GetTopic(ctx, siteId, forumId, topicId)
	if err != nil {
		return nil, err
	}
	return &domain.PostPage{
		Forum: domain.ForumRef{Id: forum.Id, Name: forum.Name, Slug: forum.Slug},
		Topic: &domain.PostTopic{
			Id:       topic.Id,
			Title:    topic.Title,
			Content:  topic.Content,
			MemberId: topic.CreatedBy,
			Locked:   topic.Locked,
		},
	}, nil
}
