package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/atlas-forum/atlas/internal/config"
	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"

	"github.com/google/uuid"
)

// --- Mocks ---

type MockContext struct {
	site    domain.Site
	members map[domain.MemberId]domain.Member
	siteErr error
}

func (m *MockContext) CurrentSite(_ context.Context, _ string) (domain.Site, error) {
	if m.siteErr != nil {
		return domain.Site{}, m.siteErr
	}
	return m.site, nil
}

func (m *MockContext) CurrentMember(_ context.Context, id *domain.MemberId) (*domain.Member, error) {
	if id == nil {
		return nil, nil
	}
	member, ok := m.members[*id]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

// MockPermissions grants sets per member, anonymous principals get the set under uuid.Nil.
type MockPermissions struct {
	sets map[domain.MemberId]domain.PermissionSet
	err  error
}

func (m *MockPermissions) set(principal domain.Principal) domain.PermissionSet {
	if principal.MemberId == nil {
		return m.sets[uuid.Nil]
	}
	return m.sets[*principal.MemberId]
}

func (m *MockPermissions) BuildPermissionSet(_ context.Context, _ domain.SiteId, _ domain.ForumId, principal domain.Principal) (domain.PermissionSet, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.set(principal), nil
}

func (m *MockPermissions) BuildPermissionSets(_ context.Context, _ domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	return map[domain.ForumId]domain.PermissionSet{readableForum: m.set(principal), hiddenForum: 0}, nil
}

func (m *MockPermissions) ReadableForums(_ context.Context, _ domain.SiteId, principal domain.Principal) ([]domain.ForumId, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.set(principal).Contains(domain.PermissionRead) {
		return []domain.ForumId{readableForum}, nil
	}
	return nil, nil
}

type MockTargets struct {
	MockGetForumById func(siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error)
	MockGetTopicInfo func(siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error)
	MockGetReplyInfo func(siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error)
}

func (m *MockTargets) GetForumById(_ context.Context, siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error) {
	if m.MockGetForumById != nil {
		return m.MockGetForumById(siteId, forumId)
	}
	return domain.Forum{}, internal_errors.NotFound("Forum not found")
}

func (m *MockTargets) GetTopicInfo(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error) {
	if m.MockGetTopicInfo != nil {
		return m.MockGetTopicInfo(siteId, forumId, topicId)
	}
	return domain.TopicInfo{}, internal_errors.NotFound("Topic not found")
}

func (m *MockTargets) GetReplyInfo(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error) {
	if m.MockGetReplyInfo != nil {
		return m.MockGetReplyInfo(siteId, forumId, topicId, replyId)
	}
	return domain.ReplyInfo{}, internal_errors.NotFound("Reply not found")
}

// MockTopicService records every command it receives.
type MockTopicService struct {
	MockCreate func(cmd domain.CreateTopic) (domain.Slug, error)
	MockUpdate func(cmd domain.UpdateTopic) (domain.Slug, error)

	mu       sync.Mutex
	commands []any
}

func (m *MockTopicService) record(cmd any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, cmd)
}

func (m *MockTopicService) received() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.commands...)
}

func (m *MockTopicService) Create(_ context.Context, cmd domain.CreateTopic) (domain.Slug, error) {
	m.record(cmd)
	if m.MockCreate != nil {
		return m.MockCreate(cmd)
	}
	return "hello", nil
}

func (m *MockTopicService) Update(_ context.Context, cmd domain.UpdateTopic) (domain.Slug, error) {
	m.record(cmd)
	if m.MockUpdate != nil {
		return m.MockUpdate(cmd)
	}
	return "hello", nil
}

func (m *MockTopicService) Pin(_ context.Context, cmd domain.PinTopic) error {
	m.record(cmd)
	return nil
}

func (m *MockTopicService) Lock(_ context.Context, cmd domain.LockTopic) error {
	m.record(cmd)
	return nil
}

func (m *MockTopicService) Delete(_ context.Context, cmd domain.DeleteTopic) error {
	m.record(cmd)
	return nil
}

type MockReplyService struct {
	MockCreate    func(cmd domain.CreateReply) (domain.PostId, error)
	MockSetAnswer func(cmd domain.SetReplyAsAnswer) error
}

func (m *MockReplyService) Create(_ context.Context, cmd domain.CreateReply) (domain.PostId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(cmd)
	}
	return uuid.New(), nil
}

func (m *MockReplyService) SetAnswer(_ context.Context, cmd domain.SetReplyAsAnswer) error {
	if m.MockSetAnswer != nil {
		return m.MockSetAnswer(cmd)
	}
	return nil
}

type MockAuthService struct {
	MockLogin func(email domain.Email, password domain.Password) (string, error)
}

func (m *MockAuthService) Login(_ context.Context, email domain.Email, password domain.Password) (string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(email, password)
	}
	return "token", nil
}

type MockTopicPages struct {
	MockBuildTopicPage    func(siteId domain.SiteId, forumSlug, topicSlug domain.Slug, opts domain.QueryOptions) (*domain.TopicPage, error)
	MockBuildTopicReplies func(siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) (domain.PaginatedData[domain.ReplyView], error)
}

func (m *MockTopicPages) BuildTopicPage(_ context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug, opts domain.QueryOptions) (*domain.TopicPage, error) {
	if m.MockBuildTopicPage != nil {
		return m.MockBuildTopicPage(siteId, forumSlug, topicSlug, opts)
	}
	return nil, internal_errors.NotFound("Topic not found")
}

func (m *MockTopicPages) BuildTopicReplies(_ context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) (domain.PaginatedData[domain.ReplyView], error) {
	if m.MockBuildTopicReplies != nil {
		return m.MockBuildTopicReplies(siteId, topicId, opts)
	}
	return domain.NewPaginatedData[domain.ReplyView](nil, 0, opts.Take()), nil
}

type MockPostPages struct {
	MockBuildEditPostPage func(siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (*domain.PostPage, error)
}

func (m *MockPostPages) BuildNewPostPage(_ context.Context, _ domain.SiteId, forumId domain.ForumId) (*domain.PostPage, error) {
	if forumId != readableForum {
		return nil, internal_errors.NotFound("Forum not found")
	}
	return &domain.PostPage{Forum: domain.ForumRef{Id: forumId, Name: "General", Slug: "general"}}, nil
}

func (m *MockPostPages) BuildEditPostPage(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (*domain.PostPage, error) {
	if m.MockBuildEditPostPage != nil {
		return m.MockBuildEditPostPage(siteId, forumId, topicId)
	}
	return nil, internal_errors.NotFound("Topic not found")
}

type MockForumPages struct{}

func (m *MockForumPages) Forum(_ context.Context, _ domain.SiteId, slug domain.Slug) (domain.Forum, error) {
	if slug != "general" {
		return domain.Forum{}, internal_errors.NotFound("Forum not found")
	}
	return domain.Forum{Id: readableForum, Name: "General", Slug: "general"}, nil
}

func (m *MockForumPages) BuildForumPage(_ context.Context, _ domain.SiteId, slug domain.Slug, opts domain.QueryOptions) (*domain.ForumPage, error) {
	return &domain.ForumPage{
		Forum:  domain.ForumView{Id: readableForum, Name: "General", Slug: slug},
		Topics: domain.NewPaginatedData[domain.ForumTopicItem](nil, 0, opts.Take()),
	}, nil
}

type MockSearchPages struct {
	forumIds []domain.ForumId
	opts     domain.QueryOptions
}

func (m *MockSearchPages) BuildSearchPage(_ context.Context, _ domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.SearchPage, error) {
	m.forumIds = forumIds
	m.opts = opts
	return &domain.SearchPage{Posts: domain.NewPaginatedData[domain.SearchPost](nil, 0, opts.Take())}, nil
}

type MockMemberPages struct {
	forumIds []domain.ForumId
}

func (m *MockMemberPages) BuildMemberPage(_ context.Context, _ domain.SiteId, memberId domain.MemberId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.MemberPage, error) {
	m.forumIds = forumIds
	return &domain.MemberPage{
		Member: domain.MemberView{Id: memberId, DisplayName: "Someone"},
		Posts:  domain.NewPaginatedData[domain.SearchPost](nil, 0, opts.Take()),
	}, nil
}

func (m *MockMemberPages) BuildMembersPage(_ context.Context, _ domain.SiteId, opts domain.QueryOptions) (*domain.MembersPage, error) {
	return &domain.MembersPage{Members: domain.NewPaginatedData[domain.MemberView](nil, 0, opts.Take())}, nil
}

type MockIndexPages struct{}

func (m *MockIndexPages) BuildIndexPage(_ context.Context, site domain.Site, readable func(domain.ForumId) bool) (*domain.IndexPage, error) {
	page := &domain.IndexPage{Site: site, Categories: []domain.IndexCategory{}}
	for _, id := range []domain.ForumId{readableForum, hiddenForum} {
		if readable(id) {
			page.Categories = append(page.Categories, domain.IndexCategory{Name: "Main", Forums: []domain.IndexForum{{Id: id}}})
		}
	}
	return page, nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

type MockCookies struct {
	token string
	ttl   time.Duration
}

func (m *MockCookies) SetAccessCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	m.token = token
	m.ttl = ttl
	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: token})
}

func (m *MockCookies) ClearAccessCookie(w http.ResponseWriter) {
	m.token = ""
	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "", MaxAge: -1})
}

// --- Fixtures ---

var (
	readableForum = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	hiddenForum   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{PageSize: 20, SearchPageSize: 10, JwtTTL: 1}}
}

// testEnv is a Handler over mocks. Members are registered with the permission set they hold.
type testEnv struct {
	h           *Handler
	context     *MockContext
	permissions *MockPermissions
	targets     *MockTargets
	topics      *MockTopicService
	replies     *MockReplyService
	auth        *MockAuthService
	topicPages  *MockTopicPages
	postPages   *MockPostPages
	search      *MockSearchPages
	members     *MockMemberPages
	health      *MockHealthChecker
	cookies     *MockCookies
}

func newTestEnv() *testEnv {
	e := &testEnv{
		context: &MockContext{
			site:    domain.Site{Id: uuid.New(), Name: "Default"},
			members: map[domain.MemberId]domain.Member{},
		},
		permissions: &MockPermissions{sets: map[domain.MemberId]domain.PermissionSet{}},
		targets:     &MockTargets{},
		topics:      &MockTopicService{},
		replies:     &MockReplyService{},
		auth:        &MockAuthService{},
		topicPages:  &MockTopicPages{},
		postPages:   &MockPostPages{},
		search:      &MockSearchPages{},
		members:     &MockMemberPages{},
		health:      &MockHealthChecker{},
		cookies:     &MockCookies{},
	}
	e.h = New(Services{
		Context:     e.context,
		Permissions: e.permissions,
		Targets:     e.targets,
		Topics:      e.topics,
		Replies:     e.replies,
		Auth:        e.auth,
		TopicPages:  e.topicPages,
		PostPages:   e.postPages,
		ForumPages:  &MockForumPages{},
		SearchPages: e.search,
		MemberPages: e.members,
		IndexPages:  &MockIndexPages{},
		Health:      e.health,
	}, e.cookies, testConfig())
	return e
}

func (e *testEnv) member(types ...domain.PermissionType) domain.MemberId {
	id := uuid.New()
	e.context.members[id] = domain.Member{Id: id, DisplayName: "member " + id.String()[:8]}
	e.permissions.sets[id] = domain.NewPermissionSet(types...)
	return id
}

func (e *testEnv) anonymous(types ...domain.PermissionType) {
	e.permissions.sets[uuid.Nil] = domain.NewPermissionSet(types...)
}
