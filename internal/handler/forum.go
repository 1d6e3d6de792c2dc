package handler

import (
	"context"
	"net/http"

	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/service"
	"github.com/atlas-forum/atlas/internal/utils"

	"github.com/go-chi/chi/v5"
)

// GetForum serves a forum with a page of its published topics.
func (h *Handler) GetForum(w http.ResponseWriter, r *http.Request) {
	forumSlug := chi.URLParam(r, "forum")
	opts := h.queryOptions(r)

	serve(h, w, r, guard[domain.Forum]{
		action: "read_forum",
		load: func(ctx context.Context, rc requestContext) (domain.Forum, error) {
			return h.svc.ForumPages.Forum(ctx, rc.site.Id, forumSlug)
		},
		forum: func(f domain.Forum) domain.ForumId { return f.Id },
		authorize: func(set domain.PermissionSet, _ requestContext, _ domain.Forum) bool {
			return service.CanRead(set)
		},
		execute: func(ctx context.Context, rc requestContext, f domain.Forum, set domain.PermissionSet) (any, error) {
			page, err := h.svc.ForumPages.BuildForumPage(ctx, rc.site.Id, f.Slug, opts)
			if err != nil {
				return nil, err
			}
			page.CanStart = rc.member != nil && service.CanStart(set)
			return page, nil
		},
	})
}

// GetIndex lists the categories and forums the caller may read.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc, err := h.resolve(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	sets, err := h.svc.Permissions.BuildPermissionSets(ctx, rc.site.Id, rc.principal)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := h.svc.IndexPages.BuildIndexPage(ctx, rc.site, func(id domain.ForumId) bool {
		return service.CanRead(sets[id])
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}
