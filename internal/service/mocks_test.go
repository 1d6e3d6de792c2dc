package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
)

// --- Mocks ---

// mockStorage implements every storage interface of the package. Unset
// functions return zero values, or NotFound for single-row lookups.
type mockStorage struct {
	getTopicBySlugFunc   func(siteId domain.SiteId, forumSlug, topicSlug domain.Slug) (domain.PostWithAuthor, error)
	getTopicAnswerFunc   func(siteId domain.SiteId, topicId domain.PostId) (*domain.PostWithAuthor, error)
	getTopicRepliesFunc  func(siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) ([]domain.PostWithAuthor, int, error)
	getTopicFunc         func(siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.PostWithAuthor, error)
	getTopicInfoFunc     func(siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error)
	topicSlugExistsFunc  func(forumId domain.ForumId, slug domain.Slug, exclude *domain.PostId) (bool, error)
	createTopicFunc      func(siteId domain.SiteId, topic domain.Post) error
	updateTopicFunc      func(cmd domain.UpdateTopic, slug domain.Slug) error
	setTopicPinnedFunc   func(cmd domain.PinTopic) error
	setTopicLockedFunc   func(cmd domain.LockTopic) error
	deleteTopicFunc      func(cmd domain.DeleteTopic) error
	createReplyFunc      func(siteId domain.SiteId, reply domain.Post) error
	getReplyInfoFunc     func(siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error)
	setReplyAsAnswerFunc func(cmd domain.SetReplyAsAnswer) error
	getForumByIdFunc     func(siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error)
	getForumBySlugFunc   func(siteId domain.SiteId, slug domain.Slug) (domain.Forum, error)
	getForumTopicsFunc   func(siteId domain.SiteId, forumId domain.ForumId, opts domain.QueryOptions) ([]domain.ForumTopicItem, int, error)
	searchPostsFunc      func(siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions, memberId *domain.MemberId) ([]domain.SearchPost, int, error)
	getMemberByIdFunc    func(id domain.MemberId) (domain.Member, error)
	getMemberByEmailFunc func(email domain.Email) (domain.Member, error)
	countMemberPosts     func(siteId domain.SiteId, memberId domain.MemberId) (int, error)
	listMembersFunc      func(siteId domain.SiteId, opts domain.QueryOptions) ([]domain.MemberWithStats, int, error)
	getIndexFunc         func(siteId domain.SiteId) ([]domain.IndexCategory, error)
	getSiteByHostFunc    func(host string) (domain.Site, error)
	getSiteByNameFunc    func(name string) (domain.Site, error)
	getPermissionSetFunc func(siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error)
	getPermissionSets    func(siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockStorage) track(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockStorage) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockStorage) GetTopicBySlug(_ context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug) (domain.PostWithAuthor, error) {
	m.track("GetTopicBySlug")
	if m.getTopicBySlugFunc != nil {
		return m.getTopicBySlugFunc(siteId, forumSlug, topicSlug)
	}
	return domain.PostWithAuthor{}, internal_errors.NotFound("Topic not found")
}

func (m *mockStorage) GetTopicAnswer(_ context.Context, siteId domain.SiteId, topicId domain.PostId) (*domain.PostWithAuthor, error) {
	m.track("GetTopicAnswer")
	if m.getTopicAnswerFunc != nil {
		return m.getTopicAnswerFunc(siteId, topicId)
	}
	return nil, nil
}

func (m *mockStorage) GetTopicReplies(_ context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) ([]domain.PostWithAuthor, int, error) {
	m.track("GetTopicReplies")
	if m.getTopicRepliesFunc != nil {
		return m.getTopicRepliesFunc(siteId, topicId, opts)
	}
	return nil, 0, nil
}

func (m *mockStorage) GetTopic(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.PostWithAuthor, error) {
	m.track("GetTopic")
	if m.getTopicFunc != nil {
		return m.getTopicFunc(siteId, forumId, topicId)
	}
	return domain.PostWithAuthor{}, internal_errors.NotFound("Topic not found")
}

func (m *mockStorage) GetTopicInfo(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error) {
	m.track("GetTopicInfo")
	if m.getTopicInfoFunc != nil {
		return m.getTopicInfoFunc(siteId, forumId, topicId)
	}
	return domain.TopicInfo{Id: topicId, ForumId: forumId}, nil
}

func (m *mockStorage) TopicSlugExists(_ context.Context, forumId domain.ForumId, slug domain.Slug, exclude *domain.PostId) (bool, error) {
	m.track("TopicSlugExists")
	if m.topicSlugExistsFunc != nil {
		return m.topicSlugExistsFunc(forumId, slug, exclude)
	}
	return false, nil
}

func (m *mockStorage) CreateTopic(_ context.Context, siteId domain.SiteId, topic domain.Post) error {
	m.track("CreateTopic")
	if m.createTopicFunc != nil {
		return m.createTopicFunc(siteId, topic)
	}
	return nil
}

func (m *mockStorage) UpdateTopic(_ context.Context, cmd domain.UpdateTopic, slug domain.Slug, _ time.Time) error {
	m.track("UpdateTopic")
	if m.updateTopicFunc != nil {
		return m.updateTopicFunc(cmd, slug)
	}
	return nil
}

func (m *mockStorage) SetTopicPinned(_ context.Context, cmd domain.PinTopic) error {
	m.track("SetTopicPinned")
	if m.setTopicPinnedFunc != nil {
		return m.setTopicPinnedFunc(cmd)
	}
	return nil
}

func (m *mockStorage) SetTopicLocked(_ context.Context, cmd domain.LockTopic) error {
	m.track("SetTopicLocked")
	if m.setTopicLockedFunc != nil {
		return m.setTopicLockedFunc(cmd)
	}
	return nil
}

func (m *mockStorage) DeleteTopic(_ context.Context, cmd domain.DeleteTopic, _ time.Time) error {
	m.track("DeleteTopic")
	if m.deleteTopicFunc != nil {
		return m.deleteTopicFunc(cmd)
	}
	return nil
}

func (m *mockStorage) CreateReply(_ context.Context, siteId domain.SiteId, reply domain.Post) error {
	m.track("CreateReply")
	if m.createReplyFunc != nil {
		return m.createReplyFunc(siteId, reply)
	}
	return nil
}

func (m *mockStorage) GetReplyInfo(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error) {
	m.track("GetReplyInfo")
	if m.getReplyInfoFunc != nil {
		return m.getReplyInfoFunc(siteId, forumId, topicId, replyId)
	}
	return domain.ReplyInfo{Id: replyId, TopicId: topicId, ForumId: forumId}, nil
}

func (m *mockStorage) SetReplyAsAnswer(_ context.Context, cmd domain.SetReplyAsAnswer) error {
	m.track("SetReplyAsAnswer")
	if m.setReplyAsAnswerFunc != nil {
		return m.setReplyAsAnswerFunc(cmd)
	}
	return nil
}

func (m *mockStorage) GetForumById(_ context.Context, siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error) {
	m.track("GetForumById")
	if m.getForumByIdFunc != nil {
		return m.getForumByIdFunc(siteId, forumId)
	}
	return domain.Forum{}, internal_errors.NotFound("Forum not found")
}

func (m *mockStorage) GetForumBySlug(_ context.Context, siteId domain.SiteId, slug domain.Slug) (domain.Forum, error) {
	m.track("GetForumBySlug")
	if m.getForumBySlugFunc != nil {
		return m.getForumBySlugFunc(siteId, slug)
	}
	return domain.Forum{}, internal_errors.NotFound("Forum not found")
}

func (m *mockStorage) GetForumTopics(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, opts domain.QueryOptions) ([]domain.ForumTopicItem, int, error) {
	m.track("GetForumTopics")
	if m.getForumTopicsFunc != nil {
		return m.getForumTopicsFunc(siteId, forumId, opts)
	}
	return nil, 0, nil
}

func (m *mockStorage) SearchPosts(_ context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions, memberId *domain.MemberId) ([]domain.SearchPost, int, error) {
	m.track("SearchPosts")
	if m.searchPostsFunc != nil {
		return m.searchPostsFunc(siteId, forumIds, opts, memberId)
	}
	return nil, 0, nil
}

func (m *mockStorage) GetMemberById(_ context.Context, id domain.MemberId) (domain.Member, error) {
	m.track("GetMemberById")
	if m.getMemberByIdFunc != nil {
		return m.getMemberByIdFunc(id)
	}
	return domain.Member{}, internal_errors.NotFound("Member not found")
}

func (m *mockStorage) GetMemberByEmail(_ context.Context, email domain.Email) (domain.Member, error) {
	m.track("GetMemberByEmail")
	if m.getMemberByEmailFunc != nil {
		return m.getMemberByEmailFunc(email)
	}
	return domain.Member{}, internal_errors.NotFound("Member not found")
}

func (m *mockStorage) CountMemberPosts(_ context.Context, siteId domain.SiteId, memberId domain.MemberId) (int, error) {
	m.track("CountMemberPosts")
	if m.countMemberPosts != nil {
		return m.countMemberPosts(siteId, memberId)
	}
	return 0, nil
}

func (m *mockStorage) ListMembers(_ context.Context, siteId domain.SiteId, opts domain.QueryOptions) ([]domain.MemberWithStats, int, error) {
	m.track("ListMembers")
	if m.listMembersFunc != nil {
		return m.listMembersFunc(siteId, opts)
	}
	return nil, 0, nil
}

func (m *mockStorage) GetIndex(_ context.Context, siteId domain.SiteId) ([]domain.IndexCategory, error) {
	m.track("GetIndex")
	if m.getIndexFunc != nil {
		return m.getIndexFunc(siteId)
	}
	return nil, nil
}

func (m *mockStorage) GetSiteByHost(_ context.Context, host string) (domain.Site, error) {
	m.track("GetSiteByHost")
	if m.getSiteByHostFunc != nil {
		return m.getSiteByHostFunc(host)
	}
	return domain.Site{}, internal_errors.NotFound("Site not found")
}

func (m *mockStorage) GetSiteByName(_ context.Context, name string) (domain.Site, error) {
	m.track("GetSiteByName")
	if m.getSiteByNameFunc != nil {
		return m.getSiteByNameFunc(name)
	}
	return domain.Site{}, internal_errors.NotFound("Site not found")
}

func (m *mockStorage) GetPermissionSet(_ context.Context, siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error) {
	m.track("GetPermissionSet")
	if m.getPermissionSetFunc != nil {
		return m.getPermissionSetFunc(siteId, forumId, principal)
	}
	return 0, nil
}

func (m *mockStorage) GetPermissionSets(_ context.Context, siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error) {
	m.track("GetPermissionSets")
	if m.getPermissionSets != nil {
		return m.getPermissionSets(siteId, principal)
	}
	return map[domain.ForumId]domain.PermissionSet{}, nil
}

// fakeRenderer marks rendered text so tests can tell raw from rendered content.
type fakeRenderer struct{}

func (fakeRenderer) ToHtml(text string) string {
	return "<html>" + strings.TrimSpace(text) + "</html>"
}

type mockJwt struct {
	newTokenFunc func(member domain.Member) (string, error)
}

func (m *mockJwt) NewToken(member domain.Member) (string, error) {
	if m.newTokenFunc != nil {
		return m.newTokenFunc(member)
	}
	return "token-" + member.Id.String(), nil
}
