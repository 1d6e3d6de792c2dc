package pg

import (
	"context"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"

	"github.com/lib/pq"
)

// GetPermissionSets aggregates the grants of a principal on every forum of the site.
// Forums without any grant are absent from the map.
func (s *Storage) GetPermissionSets(ctx context.Context, siteId domain.SiteId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error) {
	return s.getPermissionSets(ctx, siteId, nil, principal)
}

// GetPermissionSet aggregates the grants of a principal on one forum of the site.
func (s *Storage) GetPermissionSet(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, principal domain.Principal) (domain.PermissionSet, error) {
	sets, err := s.getPermissionSets(ctx, siteId, &forumId, principal)
	if err != nil {
		return 0, err
	}
	return sets[forumId], nil
}

func (s *Storage) getPermissionSets(ctx context.Context, siteId domain.SiteId, forumId *domain.ForumId, principal domain.Principal) (map[domain.ForumId]domain.PermissionSet, error) {
	roles := make([]string, len(principal.Roles))
	copy(roles, principal.Roles)

	var a args
	where := fmt.Sprintf(`c.site_id = %s
          AND (pm.role = ANY(%s::text[]) OR (pm.member_id IS NOT NULL AND pm.member_id = %s))`,
		a.add(siteId), a.add(pq.Array(roles)), a.add(nullMember(principal.MemberId)))
	if forumId != nil {
		where += fmt.Sprintf(" AND pm.forum_id = %s", a.add(*forumId))
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT DISTINCT pm.forum_id, pm.type
        FROM permissions pm
        JOIN forums f ON f.id = pm.forum_id
        JOIN categories c ON c.id = f.category_id
        WHERE `+where, a...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	defer rows.Close()

	sets := make(map[domain.ForumId]domain.PermissionSet)
	for rows.Next() {
		var id domain.ForumId
		var t domain.PermissionType
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		sets[id] = sets[id].With(t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sets, nil
}
