package service

import (
	"context"

	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/gravatar"
)

type Renderer interface {
	ToHtml(text string) string
}

type TopicReadStorage interface {
	GetTopicBySlug(ctx context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug) (domain.PostWithAuthor, error)
	GetTopicAnswer(ctx context.Context, siteId domain.SiteId, topicId domain.PostId) (*domain.PostWithAuthor, error)
	GetTopicReplies(ctx context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) ([]domain.PostWithAuthor, int, error)
}

// TopicModelBuilder assembles the topic page. Authorization is left to the caller.
type TopicModelBuilder struct {
	storage  TopicReadStorage
	renderer Renderer
}

func NewTopicModelBuilder(storage TopicReadStorage, renderer Renderer) *TopicModelBuilder {
	return &TopicModelBuilder{storage: storage, renderer: renderer}
}

// BuildTopicPage returns a 404 error if the topic is not a published topic of the site.
func (b *TopicModelBuilder) BuildTopicPage(ctx context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug, opts domain.QueryOptions) (*domain.TopicPage, error) {
	topic, err := b.storage.GetTopicBySlug(ctx, siteId, forumSlug, topicSlug)
	if err != nil {
		return nil, err
	}

	replies, err := b.BuildTopicReplies(ctx, siteId, topic.Id, opts)
	if err != nil {
		return nil, err
	}

	page := &domain.TopicPage{
		Forum:   domain.ForumRef{Id: topic.Forum.Id, Name: topic.Forum.Name, Slug: topic.Forum.Slug},
		Topic:   b.topicView(topic),
		Replies: replies,
	}

	if topic.HasAnswer {
		answer, err := b.storage.GetTopicAnswer(ctx, siteId, topic.Id)
		if err != nil {
			return nil, err
		}
		if answer != nil {
			view := b.replyView(*answer)
			page.Answer = &view
		}
	}
	return page, nil
}

// BuildTopicReplies pages through the published replies of a topic, the answer excluded.
func (b *TopicModelBuilder) BuildTopicReplies(ctx context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) (domain.PaginatedData[domain.ReplyView], error) {
	posts, total, err := b.storage.GetTopicReplies(ctx, siteId, topicId, opts)
	if err != nil {
		return domain.PaginatedData[domain.ReplyView]{}, err
	}
	views := make([]domain.ReplyView, 0, len(posts))
	for _, p := range posts {
		views = append(views, b.replyView(p))
	}
	return domain.NewPaginatedData(views, total, opts.Take()), nil
}

func (b *TopicModelBuilder) topicView(p domain.PostWithAuthor) domain.TopicView {
	return domain.TopicView{
		Id:                p.Id,
		ForumId:           p.ForumId,
		Title:             p.Title,
		Slug:              p.Slug,
		Content:           b.renderer.ToHtml(p.Content),
		OriginalContent:   p.Content,
		MemberId:          p.Author.Id,
		MemberDisplayName: p.Author.DisplayName,
		UserId:            p.Author.IdentityUserId,
		GravatarHash:      gravatar.Hash(p.Author.Email),
		TimeStamp:         p.CreatedOn,
		Pinned:            p.Pinned,
		Locked:            p.Locked,
		HasAnswer:         p.HasAnswer,
	}
}

func (b *TopicModelBuilder) replyView(p domain.PostWithAuthor) domain.ReplyView {
	return domain.ReplyView{
		Id:                p.Id,
		Content:           b.renderer.ToHtml(p.Content),
		OriginalContent:   p.Content,
		MemberId:          p.Author.Id,
		MemberDisplayName: p.Author.DisplayName,
		UserId:            p.Author.IdentityUserId,
		GravatarHash:      gravatar.Hash(p.Author.Email),
		TimeStamp:         p.CreatedOn,
		IsAnswer:          p.IsAnswer,
	}
}
