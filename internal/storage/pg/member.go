package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
)

const memberColumns = "m.id, m.identity_user_id, m.email, m.display_name, m.password_hash, m.created_on"

func (s *Storage) GetMemberById(ctx context.Context, id domain.MemberId) (domain.Member, error) {
	return s.getMember(ctx, "m.id = $1", id)
}

func (s *Storage) GetMemberByEmail(ctx context.Context, email domain.Email) (domain.Member, error) {
	return s.getMember(ctx, "lower(m.email) = lower($1)", email)
}

func (s *Storage) getMember(ctx context.Context, where string, arg interface{}) (domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members m WHERE "+where, arg).
		Scan(&m.Id, &m.IdentityUserId, &m.Email, &m.DisplayName, &m.PasswordHash, &m.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, internal_errors.NotFound("Member not found")
		}
		return domain.Member{}, fmt.Errorf("failed to fetch member: %w", err)
	}

	roles, err := s.getMemberRoles(ctx, m.Id)
	if err != nil {
		return domain.Member{}, err
	}
	m.Roles = roles
	return m, nil
}

func (s *Storage) getMemberRoles(ctx context.Context, id domain.MemberId) ([]domain.RoleName, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT role FROM member_roles WHERE member_id = $1 ORDER BY role", id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.RoleName
	for rows.Next() {
		var role domain.RoleName
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return roles, nil
}

// CountMemberPosts counts published posts of a member on one site.
func (s *Storage) CountMemberPosts(ctx context.Context, siteId domain.SiteId, memberId domain.MemberId) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*)
        FROM posts p
        `+siteScope("p")+`
        WHERE p.created_by = $1 AND c.site_id = $2 AND p.status = 0
    `, memberId, siteId).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count member posts: %w", err)
	}
	return total, nil
}

// ListMembers pages through members ordered by display name, with
// post counts restricted to the site.
func (s *Storage) ListMembers(ctx context.Context, siteId domain.SiteId, opts domain.QueryOptions) ([]domain.MemberWithStats, int, error) {
	var a args
	siteParam := a.add(siteId)
	where := "TRUE"
	if opts.SearchIsDefined() {
		where = fmt.Sprintf("m.display_name ILIKE %s", a.add(likePattern(opts.Search)))
	}

	query := fmt.Sprintf(`
        SELECT %s,
            (SELECT COUNT(*) FROM posts p
              %s
              WHERE p.created_by = m.id AND c.site_id = %s AND p.status = 0)
        FROM members m
        WHERE %s
        ORDER BY lower(m.display_name), m.id
        LIMIT %s OFFSET %s
    `, memberColumns, siteScope("p"), siteParam, where, a.add(opts.Take()), a.add(opts.Skip()))

	rows, err := s.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.MemberWithStats
	for rows.Next() {
		var m domain.MemberWithStats
		if err := rows.Scan(&m.Id, &m.IdentityUserId, &m.Email, &m.DisplayName, &m.PasswordHash, &m.CreatedOn, &m.TotalPosts); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	// the site parameter is only referenced by the page query
	countArgs := a[1 : len(a)-2]
	countWhere := "TRUE"
	if opts.SearchIsDefined() {
		countWhere = "m.display_name ILIKE $1"
	}
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members m WHERE "+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}
	return members, total, nil
}
