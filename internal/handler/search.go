package handler

import (
	"net/http"

	"github.com/atlas-forum/atlas/internal/utils"
)

// Search finds published posts in the forums the caller may read.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc, err := h.resolve(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	forumIds, err := h.svc.Permissions.ReadableForums(ctx, rc.site.Id, rc.principal)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := h.svc.SearchPages.BuildSearchPage(ctx, rc.site.Id, forumIds, h.searchOptions(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}
