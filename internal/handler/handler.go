package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/atlas-forum/atlas/internal/config"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	topicCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_topic_commands_total",
			Help: "Topic and reply commands executed",
		},
		[]string{"command"},
	)

	authorizationDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_authorization_denied_total",
			Help: "Requests rejected by a permission check",
		},
		[]string{"action"},
	)
)

type ContextResolver interface {
	CurrentSite(ctx context.Context, host string) (domain.Site, error)
	CurrentMember(ctx context.Context, id *domain.MemberId) (*domain.Member, error)
}

type PermissionBuilder interface {
	BuildPermissionSet(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error)
	BuildPermissionSets(ctx context.Context, siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error)
	ReadableForums(ctx context.Context, siteId domain.SiteId, principal domain.Principal) ([]domain.ForumId, error)
}

// TargetLoader checks that the target of a command exists in scope.
type TargetLoader interface {
	GetForumById(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error)
	GetTopicInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error)
	GetReplyInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error)
}

type TopicPages interface {
	BuildTopicPage(ctx context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug, opts domain.QueryOptions) (*domain.TopicPage, error)
	BuildTopicReplies(ctx context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) (domain.PaginatedData[domain.ReplyView], error)
}

type PostPages interface {
	BuildNewPostPage(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId) (*domain.PostPage, error)
	BuildEditPostPage(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (*domain.PostPage, error)
}

type ForumPages interface {
	Forum(ctx context.Context, siteId domain.SiteId, slug domain.Slug) (domain.Forum, error)
	BuildForumPage(ctx context.Context, siteId domain.SiteId, forumSlug domain.Slug, opts domain.QueryOptions) (*domain.ForumPage, error)
}

type SearchPages interface {
	BuildSearchPage(ctx context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.SearchPage, error)
}

type MemberPages interface {
	BuildMemberPage(ctx context.Context, siteId domain.SiteId, memberId domain.MemberId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.MemberPage, error)
	BuildMembersPage(ctx context.Context, siteId domain.SiteId, opts domain.QueryOptions) (*domain.MembersPage, error)
}

type IndexPages interface {
	BuildIndexPage(ctx context.Context, site domain.Site, readable func(domain.ForumId) bool) (*domain.IndexPage, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// CookieWriter sets and clears the access token cookie.
type CookieWriter interface {
	SetAccessCookie(w http.ResponseWriter, token string, ttl time.Duration)
	ClearAccessCookie(w http.ResponseWriter)
}

// Services groups everything the handlers delegate to.
type Services struct {
	Context     ContextResolver
	Permissions PermissionBuilder
	Targets     TargetLoader
	Topics      service.TopicService
	Replies     service.ReplyService
	Auth        service.AuthService
	TopicPages  TopicPages
	PostPages   PostPages
	ForumPages  ForumPages
	SearchPages SearchPages
	MemberPages MemberPages
	IndexPages  IndexPages
	Health      Pinger
}

type Handler struct {
	svc     Services
	cookies CookieWriter
	cfg     *config.Config
}

func New(services Services, cookies CookieWriter, cfg *config.Config) *Handler {
	return &Handler{svc: services, cookies: cookies, cfg: cfg}
}
