package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"
	"github.com/atlas-forum/atlas/internal/slug"

	"github.com/google/uuid"
)

const (
	maxTitleLength   = 200
	maxContentLength = 100_000
	slugAttempts     = 5
)

// reservedSlugs collide with static routes under a forum.
var reservedSlugs = map[domain.Slug]bool{
	"new-topic":  true,
	"edit-topic": true,
}

type TopicService interface {
	Create(ctx context.Context, cmd domain.CreateTopic) (domain.Slug, error)
	Update(ctx context.Context, cmd domain.UpdateTopic) (domain.Slug, error)
	Pin(ctx context.Context, cmd domain.PinTopic) error
	Lock(ctx context.Context, cmd domain.LockTopic) error
	Delete(ctx context.Context, cmd domain.DeleteTopic) error
}

type TopicStorage interface {
	GetTopic(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.PostWithAuthor, error)
	GetTopicInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error)
	TopicSlugExists(ctx context.Context, forumId domain.ForumId, slug domain.Slug, exclude *domain.PostId) (bool, error)
	CreateTopic(ctx context.Context, siteId domain.SiteId, topic domain.Post) error
	UpdateTopic(ctx context.Context, cmd domain.UpdateTopic, slug domain.Slug, modifiedOn time.Time) error
	SetTopicPinned(ctx context.Context, cmd domain.PinTopic) error
	SetTopicLocked(ctx context.Context, cmd domain.LockTopic) error
	DeleteTopic(ctx context.Context, cmd domain.DeleteTopic, modifiedOn time.Time) error
}

type Topic struct {
	storage TopicStorage
	now     func() time.Time
}

func NewTopic(storage TopicStorage) *Topic {
	return &Topic{storage: storage, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a published topic with a slug unique within its forum.
// Content is stored as raw markdown.
func (s *Topic) Create(ctx context.Context, cmd domain.CreateTopic) (domain.Slug, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	if err := validatePost(&cmd.Title, cmd.Content); err != nil {
		return "", err
	}

	topic := domain.Post{
		Id:        uuid.New(),
		ForumId:   cmd.ForumId,
		Title:     cmd.Title,
		Content:   cmd.Content,
		Status:    domain.StatusPublished,
		CreatedBy: cmd.MemberId,
		CreatedOn: s.now(),
	}

	// a concurrent insert can take the slug between the check and the insert
	for attempt := 0; attempt < slugAttempts; attempt++ {
		topicSlug, err := s.uniqueSlug(ctx, cmd.ForumId, cmd.Title, nil)
		if err != nil {
			return "", err
		}
		topic.Slug = topicSlug

		err = s.storage.CreateTopic(ctx, cmd.SiteId, topic)
		if errors.Is(err, domain.ErrSlugConflict) {
			logger.Log.Debug("slug taken concurrently, retrying", "forum_id", cmd.ForumId, "slug", topicSlug)
			continue
		}
		if err != nil {
			return "", err
		}
		logger.Log.Info("topic created", "topic_id", topic.Id, "forum_id", cmd.ForumId, "member_id", cmd.MemberId)
		return topicSlug, nil
	}
	return "", fmt.Errorf("failed to allocate slug for %q after %d attempts", cmd.Title, slugAttempts)
}

// Update edits a topic in place. The slug only changes with the title.
func (s *Topic) Update(ctx context.Context, cmd domain.UpdateTopic) (domain.Slug, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	if err := validatePost(&cmd.Title, cmd.Content); err != nil {
		return "", err
	}

	current, err := s.storage.GetTopic(ctx, cmd.SiteId, cmd.ForumId, cmd.Id)
	if err != nil {
		return "", err
	}
	cmd.Status = current.Status

	for attempt := 0; attempt < slugAttempts; attempt++ {
		topicSlug := current.Slug
		if cmd.Title != current.Title {
			if topicSlug, err = s.uniqueSlug(ctx, cmd.ForumId, cmd.Title, &cmd.Id); err != nil {
				return "", err
			}
		}

		err = s.storage.UpdateTopic(ctx, cmd, topicSlug, s.now())
		if errors.Is(err, domain.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		logger.Log.Info("topic updated", "topic_id", cmd.Id, "member_id", cmd.MemberId)
		return topicSlug, nil
	}
	return "", fmt.Errorf("failed to allocate slug for %q after %d attempts", cmd.Title, slugAttempts)
}

func (s *Topic) Pin(ctx context.Context, cmd domain.PinTopic) error {
	if _, err := s.storage.GetTopicInfo(ctx, cmd.SiteId, cmd.ForumId, cmd.Id); err != nil {
		return err
	}
	return s.storage.SetTopicPinned(ctx, cmd)
}

func (s *Topic) Lock(ctx context.Context, cmd domain.LockTopic) error {
	if _, err := s.storage.GetTopicInfo(ctx, cmd.SiteId, cmd.ForumId, cmd.Id); err != nil {
		return err
	}
	return s.storage.SetTopicLocked(ctx, cmd)
}

// Delete is a soft delete.
func (s *Topic) Delete(ctx context.Context, cmd domain.DeleteTopic) error {
	if _, err := s.storage.GetTopicInfo(ctx, cmd.SiteId, cmd.ForumId, cmd.Id); err != nil {
		return err
	}
	if err := s.storage.DeleteTopic(ctx, cmd, s.now()); err != nil {
		return err
	}
	logger.Log.Info("topic deleted", "topic_id", cmd.Id, "member_id", cmd.MemberId)
	return nil
}

func (s *Topic) uniqueSlug(ctx context.Context, forumId domain.ForumId, title domain.PostTitle, exclude *domain.PostId) (domain.Slug, error) {
	base := slug.Make(title)
	if base == "" {
		base = "topic"
	}
	candidate := base
	for n := 2; ; n++ {
		exists, err := s.storage.TopicSlugExists(ctx, forumId, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !exists && !reservedSlugs[candidate] {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

// validatePost checks title (when given) and content before any mutation.
func validatePost(title *domain.PostTitle, content domain.PostContent) error {
	v := internal_errors.NewValidationError()
	if title != nil {
		switch {
		case *title == "":
			v.Add("title", "required")
		case len([]rune(*title)) > maxTitleLength:
			v.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
		}
	}
	switch {
	case strings.TrimSpace(content) == "":
		v.Add("content", "required")
	case len(content) > maxContentLength:
		v.Add("content", fmt.Sprintf("must be at most %d bytes", maxContentLength))
	}
	return v.OrNil()
}
