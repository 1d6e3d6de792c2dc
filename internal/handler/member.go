package handler

import (
	"net/http"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/utils"
)

func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	rc, err := h.resolve(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := h.svc.MemberPages.BuildMembersPage(r.Context(), rc.site.Id, h.queryOptions(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

// GetMember serves a member profile with the posts the caller may read.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	memberId, err := uuidParam(r, "member")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	rc, err := h.resolve(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.writeMemberPage(w, r, rc, memberId)
}

// GetMe serves the profile of the signed-in member.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	rc, err := h.resolve(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if rc.member == nil {
		utils.WriteErrorAndStatusCode(w, internal_errors.Unauthorized("Please sign-in"))
		return
	}
	h.writeMemberPage(w, r, rc, rc.member.Id)
}

func (h *Handler) writeMemberPage(w http.ResponseWriter, r *http.Request, rc requestContext, memberId domain.MemberId) {
	ctx := r.Context()
	forumIds, err := h.svc.Permissions.ReadableForums(ctx, rc.site.Id, rc.principal)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := h.svc.MemberPages.BuildMemberPage(ctx, rc.site.Id, memberId, forumIds, h.searchOptions(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}
