package handler

import (
	"context"
	"net/http"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"
	"github.com/atlas-forum/atlas/internal/middleware"
	"github.com/atlas-forum/atlas/internal/utils"
)

// stage is one step of a guarded request. Every stage before stageExecute is read-only.
type stage int

const (
	stageContext stage = iota
	stageLoad
	stagePermissions
	stageAuthorize
	stageExecute
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageContext:
		return "context"
	case stageLoad:
		return "load"
	case stagePermissions:
		return "permissions"
	case stageAuthorize:
		return "authorize"
	case stageExecute:
		return "execute"
	case stageDone:
		return "done"
	default:
		return "unknown"
	}
}

// outcome tells where a pipeline stopped. err is nil only when stage is stageDone.
type outcome struct {
	stage stage
	err   error
}

// requestContext is the site and principal a request runs as.
type requestContext struct {
	site      domain.Site
	member    *domain.Member
	principal domain.Principal
}

func (rc requestContext) memberId() domain.MemberId {
	return rc.member.Id
}

// guard describes an endpoint as
// resolve context -> load target -> build permission set -> authorize -> execute.
// A missing target is only reported by load, a refused action only by authorize.
type guard[T any] struct {
	action     string
	needMember bool
	load       func(ctx context.Context, rc requestContext) (T, error)
	forum      func(target T) domain.ForumId
	authorize  func(set domain.PermissionSet, rc requestContext, target T) bool
	execute    func(ctx context.Context, rc requestContext, target T, set domain.PermissionSet) (any, error)
}

func (h *Handler) resolve(r *http.Request) (requestContext, error) {
	ctx := r.Context()
	site, err := h.svc.Context.CurrentSite(ctx, r.Host)
	if err != nil {
		return requestContext{}, err
	}
	member, err := h.svc.Context.CurrentMember(ctx, middleware.MemberIdFromContext(ctx))
	if err != nil {
		return requestContext{}, err
	}
	return requestContext{site: site, member: member, principal: domain.PrincipalFor(member)}, nil
}

func run[T any](h *Handler, r *http.Request, g guard[T]) (any, outcome) {
	ctx := r.Context()

	rc, err := h.resolve(r)
	if err != nil {
		return nil, outcome{stage: stageContext, err: err}
	}

	target, err := g.load(ctx, rc)
	if err != nil {
		return nil, outcome{stage: stageLoad, err: err}
	}

	set, err := h.svc.Permissions.BuildPermissionSet(ctx, rc.site.Id, g.forum(target), rc.principal)
	if err != nil {
		return nil, outcome{stage: stagePermissions, err: err}
	}

	if (g.needMember && rc.member == nil) || !g.authorize(set, rc, target) {
		return nil, outcome{stage: stageAuthorize, err: internal_errors.Unauthorized("You are not allowed to do this")}
	}

	result, err := g.execute(ctx, rc, target, set)
	if err != nil {
		return nil, outcome{stage: stageExecute, err: err}
	}
	return result, outcome{stage: stageDone}
}

// serve runs g and responds with its result as json, or with the error of the stage that stopped it.
func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, g guard[T]) {
	result, out := run(h, r, g)
	if out.err != nil {
		switch out.stage {
		case stageAuthorize:
			authorizationDenied.WithLabelValues(g.action).Inc()
			logger.Log.Debug("authorization denied", "action", g.action, "path", r.URL.Path)
		case stageExecute, stagePermissions, stageContext:
			logger.Log.Debug("request stopped", "action", g.action, "stage", out.stage.String(), "error", out.err)
		}
		utils.WriteErrorAndStatusCode(w, out.err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
