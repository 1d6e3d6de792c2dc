package handler

import (
	"context"
	"net/http"

	"github.com/atlas-forum/atlas/internal/api"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/service"
	"github.com/atlas-forum/atlas/internal/utils"
)

// CreateReply responds with the id of the new reply.
func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.TopicInfo]{
		action:     "reply",
		needMember: true,
		load:       h.loadTopic(body.ForumId, body.TopicId),
		forum:      topicForum,
		authorize: func(set domain.PermissionSet, _ requestContext, t domain.TopicInfo) bool {
			return service.CanReply(set, t.Locked)
		},
		execute: func(ctx context.Context, rc requestContext, t domain.TopicInfo, _ domain.PermissionSet) (any, error) {
			id, err := h.svc.Replies.Create(ctx, domain.CreateReply{
				SiteId:   rc.site.Id,
				ForumId:  t.ForumId,
				TopicId:  t.Id,
				MemberId: rc.memberId(),
				Content:  body.Content,
				Status:   domain.StatusPublished,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("create_reply").Inc()
			return api.CreateReplyResponse{Id: id}, nil
		},
	})
}

// SetAnswer marks or unmarks a reply as the answer of its topic from a json boolean body.
func (h *Handler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	forumId, topicId, err := topicParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	replyId, err := uuidParam(r, "reply")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var isAnswer bool
	if err := utils.Decode(r.Body, &isAnswer); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	serve(h, w, r, guard[domain.ReplyInfo]{
		action:     "set_answer",
		needMember: true,
		load: func(ctx context.Context, rc requestContext) (domain.ReplyInfo, error) {
			return h.svc.Targets.GetReplyInfo(ctx, rc.site.Id, forumId, topicId, replyId)
		},
		forum: func(info domain.ReplyInfo) domain.ForumId { return info.ForumId },
		authorize: func(set domain.PermissionSet, rc requestContext, info domain.ReplyInfo) bool {
			return service.CanSetAnswer(set, rc.principal.Is(info.TopicMemberId))
		},
		execute: func(ctx context.Context, rc requestContext, info domain.ReplyInfo, _ domain.PermissionSet) (any, error) {
			err := h.svc.Replies.SetAnswer(ctx, domain.SetReplyAsAnswer{
				Id:       info.Id,
				TopicId:  info.TopicId,
				SiteId:   rc.site.Id,
				ForumId:  info.ForumId,
				MemberId: rc.memberId(),
				IsAnswer: isAnswer,
			})
			if err != nil {
				return nil, err
			}
			topicCommands.WithLabelValues("set_answer").Inc()
			return nil, nil
		},
	})
}
