package handler

import (
	"context"
	"net/http"

	"github.com/atlas-forum/atlas/internal/api"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/service"
	"github.com/atlas-forum/atlas/internal/utils"

	"github.com/go-chi/chi/v5"
)

// GetTopic serves a published topic with a page of its replies and the accepted answer.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	forumSlug := chi.URLParam(r, "forum")
	topicSlug := chi.URLParam(r, "topic")
	opts := h.queryOptions(r)

	serve(h, w, r, guard[*domain.TopicPage]{
		action: "read_topic",
		load: func(ctx context.Context, rc requestContext) (*domain.TopicPage, error) {
			return h.svc.TopicPages.BuildTopicPage(ctx, rc.site.Id, forumSlug, topicSlug, opts)
		},
		forum: func(p *domain.TopicPage) domain.ForumId { return p.Forum.Id },
		authorize: func(set domain.PermissionSet, _ requestContext, _ *domain.TopicPage) bool {
			return service.CanRead(set)
		},
		execute: func(_ context.Context, rc requestContext, p *domain.TopicPage, set domain.PermissionSet) (any, error) {
			signedIn := rc.member != nil
			isAuthor := rc.principal.Is(p.Topic.MemberId)
			p.CanEdit = signedIn && service.CanEdit(set, isAuthor, p.Topic.Locked)
			p.CanReply = signedIn && service.CanReply(set, p.Topic.Locked)
			p.CanDelete = signedIn && service.CanDelete(set, isAuthor)
			p.CanModerate = signedIn && service.CanModerate(set)
			return p, nil
		},
	})
}

// GetTopicReplies pages through the replies of a topic.
func (h *Handler) GetTopicReplies(w http.ResponseWriter, r *http.Request) {
	forumId, topicId, err := topicParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	opts := h.queryOptions(r)

	serve(h, w, r, guard[domain.TopicInfo]{
		action: "read_replies",
		load:   h.loadTopic(forumId, topicId),
		forum:  topicForum,
		authorize: func(set domain.PermissionSet, _ requestContext, _ domain.TopicInfo) bool {
			return service.CanRead(set)
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			return h.svc.TopicPages.BuildTopicReplies(ctx, rc.site.Id, t.Id, opts)
		},
	})
}

// NewTopic serves the model of the new topic form.
func (h *Handler) NewTopic(w http.ResponseWriter, r *http.Request) {
	forumId, err := uuidParam(r, "forum")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[*domain.PostPage]{
		action:     "start_topic",
		needMember: true,
		load: func(ctx context.Context, rc requestContext) (*domain.PostPage, error) {
			return h.svc.PostPages.BuildNewPostPage(ctx, rc.site.Id, forumId)
		},
		forum: postPageForum,
		authorize: func(set domain.PermissionSet, _ requestContext, _ *domain.PostPage) bool {
			return service.CanStart(set)
		},
		execute: returnTarget[*domain.PostPage],
	})
}

// EditTopic serves the model of the edit topic form with the raw content.
func (h *Handler) EditTopic(w http.ResponseWriter, r *http.Request) {
	forumId, err := uuidParam(r, "forum")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	topicId, err := uuidParam(r, "topic")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[*domain.PostPage]{
		action:     "edit_topic",
		needMember: true,
		load: func(ctx context.Context, rc requestContext) (*domain.PostPage, error) {
			return h.svc.PostPages.BuildEditPostPage(ctx, rc.site.Id, forumId, topicId)
		},
		forum: postPageForum,
		authorize: func(set domain.PermissionSet, rc requestContext, p *domain.PostPage) bool {
			return service.CanEdit(set, rc.principal.Is(p.Topic.MemberId), p.Topic.Locked)
		},
		execute: returnTarget[*domain.PostPage],
	})
}

// CreateTopic responds with the slug of the new topic.
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var body api.CreateTopicRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.Forum]{
		action:     "start_topic",
		needMember: true,
		load: func(ctx context.Context, rc requestContext) (domain.Forum, error) {
			return h.svc.Targets.GetForumById(ctx, rc.site.Id, body.ForumId)
		},
		forum: func(f domain.Forum) domain.ForumId { return f.Id },
		authorize: func(set domain.PermissionSet, _ requestContext, _ domain.Forum) bool {
			return service.CanStart(set)
		},
		execute: func(ctx context.Context, rc requestContext, f domain.Forum, _ domain.PermissionSet) (any, error) {
			slug, err := h.svc.Topics.Create(ctx, domain.CreateTopic{
				SiteId:   rc.site.Id,
				ForumId:  f.Id,
				MemberId: rc.memberId(),
				Title:    body.Title,
				Content:  body.Content,
				Status:   domain.StatusPublished,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("create_topic").Inc()
			return slug, nil
		},
	})
}

// UpdateTopic responds with the slug of the topic, which changes with its title.
func (h *Handler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	var body api.UpdateTopicRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.TopicInfo]{
		action:     "edit_topic",
		needMember: true,
		load:       h.loadTopic(body.ForumId, body.TopicId),
		forum:      topicForum,
		authorize: func(set domain.PermissionSet, rc requestContext, t domain.TopicInfo) bool {
			return service.CanEdit(set, rc.principal.Is(t.MemberId), t.Locked)
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			slug, err := h.svc.Topics.Update(ctx, domain.UpdateTopic{
				Id:       t.Id,
				SiteId:   rc.site.Id,
				ForumId:  t.ForumId,
				MemberId: rc.memberId(),
				Title:    body.Title,
				Content:  body.Content,
				Status:   domain.StatusPublished,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("update_topic").Inc()
			return slug, nil
		},
	})
}

// PinTopic sets the pinned flag from a json boolean body.
func (h *Handler) PinTopic(w http.ResponseWriter, r *http.Request) {
	forumId, topicId, err := topicParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var pinned bool
	if err := utils.Decode(r.Body, &pinned); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.TopicInfo]{
		action:     "pin_topic",
		needMember: true,
		load:       h.loadTopic(forumId, topicId),
		forum:      topicForum,
		authorize: func(set domain.PermissionSet, _ requestContext, _ domain.TopicInfo) bool {
			return service.CanPin(set)
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			err := h.svc.Topics.Pin(ctx, domain.PinTopic{
				Id:       t.Id,
				SiteId:   rc.site.Id,
				ForumId:  t.ForumId,
				MemberId: rc.memberId(),
				Pinned:   pinned,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("pin_topic").Inc()
			return nil, nil
		},
	})
}

// LockTopic sets the locked flag from a json boolean body. Locking twice is not an error.
func (h *Handler) LockTopic(w http.ResponseWriter, r *http.Request) {
	forumId, topicId, err := topicParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var locked bool
	if err := utils.Decode(r.Body, &locked); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.TopicInfo]{
		action:     "lock_topic",
		needMember: true,
		load:       h.loadTopic(forumId, topicId),
		forum:      topicForum,
		authorize: func(set domain.PermissionSet, _ requestContext, _ domain.TopicInfo) bool {
			return service.CanLock(set)
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			err := h.svc.Topics.Lock(ctx, domain.LockTopic{
				Id:       t.Id,
				SiteId:   rc.site.Id,
				ForumId:  t.ForumId,
				MemberId: rc.memberId(),
				Locked:   locked,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("lock_topic").Inc()
			return nil, nil
		},
	})
}

// DeleteTopic soft deletes a topic.
func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	forumId, topicId, err := topicParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.TopicInfo]{
		action:     "delete_topic",
		needMember: true,
		load:       h.loadTopic(forumId, topicId),
		forum:      topicForum,
		authorize: func(set domain.PermissionSet, rc requestContext, t domain.TopicInfo) bool {
			return service.CanDelete(set, rc.principal.Is(t.MemberId))
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			err := h.svc.Topics.Delete(ctx, domain.DeleteTopic{
				Id:       t.Id,
				SiteId:   rc.site.Id,
				ForumId:  t.ForumId,
				MemberId: rc.memberId(),
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("delete_topic").Inc()
			return nil, nil
		},
	})
}

func (h *Handler) loadTopic(forumId domain.ForumId, topicId domain.PostId) func(context.Context, requestContext) (domain.TopicInfo, error) {
	return func(ctx context.Context, rc requestContext) (domain.TopicInfo, error) {
		return h.svc.Targets.GetTopicInfo(ctx, rc.site.Id, forumId, topicId)
	}
}

func topicParams(r *http.Request) (domain.ForumId, domain.PostId, error) {
	forumId, err := uuidParam(r, "forum")
	if err != nil {
		return domain.ForumId{}, domain.PostId{}, err
	}
	topicId, err := uuidParam(r, "topic")
	if err != nil {
		return domain.ForumId{}, domain.PostId{}, err
	}
	return forumId, topicId, nil
}

func topicForum(t domain.TopicInfo) domain.ForumId {
	return t.ForumId
}

func postPageForum(p *domain.PostPage) domain.ForumId {
	return p.Forum.Id
}

func returnTarget[T any](_ context.Context, _ requestContext, target T, _ domain.PermissionSet) (any, error) {
	return target, nil
}
