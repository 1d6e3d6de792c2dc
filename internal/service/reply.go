package service

import (
	"context"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/logger"

	"github.com/google/uuid"
)

type ReplyService interface {
	Create(ctx context.Context, cmd domain.CreateReply) (domain.PostId, error)
	SetAnswer(ctx context.Context, cmd domain.SetReplyAsAnswer) error
}

type ReplyStorage interface {
	CreateReply(ctx context.Context, siteId domain.SiteId, reply domain.Post) error
	GetReplyInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error)
	SetReplyAsAnswer(ctx context.Context, cmd domain.SetReplyAsAnswer) error
}

type Reply struct {
	storage ReplyStorage
	now     func() time.Time
}

func NewReply(storage ReplyStorage) *Reply {
	return &Reply{storage: storage, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a published reply to a published topic of the forum and site.
func (s *Reply) Create(ctx context.Context, cmd domain.CreateReply) (domain.PostId, error) {
	if err := validatePost(nil, cmd.Content); err != nil {
		return uuid.Nil, err
	}
	topicId := cmd.TopicId
	reply := domain.Post{
		Id:        uuid.New(),
		ForumId:   cmd.ForumId,
		TopicId:   &topicId,
		Content:   cmd.Content,
		Status:    domain.StatusPublished,
		CreatedBy: cmd.MemberId,
		CreatedOn: s.now(),
	}
	if err := s.storage.CreateReply(ctx, cmd.SiteId, reply); err != nil {
		return uuid.Nil, err
	}
	logger.Log.Info("reply created", "reply_id", reply.Id, "topic_id", cmd.TopicId, "member_id", cmd.MemberId)
	return reply.Id, nil
}

// SetAnswer flags the reply as the answer of its topic, replacing any previous one.
func (s *Reply) SetAnswer(ctx context.Context, cmd domain.SetReplyAsAnswer) error {
	if _, err := s.storage.GetReplyInfo(ctx, cmd.SiteId, cmd.ForumId, cmd.TopicId, cmd.Id); err != nil {
		return err
	}
	return s.storage.SetReplyAsAnswer(ctx, cmd)
}
