package service

import (
	"context"

	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/gravatar"
)

type MemberStorage interface {
	GetMemberById(ctx context.Context, id domain.MemberId) (domain.Member, error)
	CountMemberPosts(ctx context.Context, siteId domain.SiteId, memberId domain.MemberId) (int, error)
	ListMembers(ctx context.Context, siteId domain.SiteId, opts domain.QueryOptions) ([]domain.MemberWithStats, int, error)
}

type MemberModelBuilder struct {
	storage MemberStorage
	search  *SearchModelBuilder
}

func NewMemberModelBuilder(storage MemberStorage, search *SearchModelBuilder) *MemberModelBuilder {
	return &MemberModelBuilder{storage: storage, search: search}
}

// BuildMemberPage returns a member profile and their posts in the given forums.
func (b *MemberModelBuilder) BuildMemberPage(ctx context.Context, siteId domain.SiteId, memberId domain.MemberId, forumIds []domain.ForumId, opts domain.QueryOptions) (*domain.MemberPage, error) {
	member, err := b.storage.GetMemberById(ctx, memberId)
	if err != nil {
		return nil, err
	}
	total, err := b.storage.CountMemberPosts(ctx, siteId, memberId)
	if err != nil {
		return nil, err
	}
	posts, err := b.search.SearchPosts(ctx, siteId, forumIds, opts, &memberId)
	if err != nil {
		return nil, err
	}
	return &domain.MemberPage{
		Member: memberView(domain.MemberWithStats{Member: member, TotalPosts: total}),
		Posts:  posts,
	}, nil
}

func (b *MemberModelBuilder) BuildMembersPage(ctx context.Context, siteId domain.SiteId, opts domain.QueryOptions) (*domain.MembersPage, error) {
	members, total, err := b.storage.ListMembers(ctx, siteId, opts)
	if err != nil {
		return nil, err
	}
	views := make([]domain.MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView(m))
	}
	return &domain.MembersPage{Members: domain.NewPaginatedData(views, total, opts.Take())}, nil
}

func memberView(m domain.MemberWithStats) domain.MemberView {
	return domain.MemberView{
		Id:           m.Id,
		DisplayName:  m.DisplayName,
		GravatarHash: gravatar.Hash(m.Email),
		TotalPosts:   m.TotalPosts,
		CreatedOn:    m.CreatedOn,
	}
}
