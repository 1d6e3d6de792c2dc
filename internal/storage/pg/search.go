package pg

import (
	"context"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"
)

var searchOrderColumns = map[string]string{
	domain.SortTimestamp: "p.created_on",
	domain.SortTitle:     "COALESCE(p.title, t.title)",
}

func searchOrder(opts domain.QueryOptions) string {
	if !opts.OrderByIsDefined() {
		return "p.created_on DESC, p.id"
	}
	dir := "ASC"
	if opts.OrderDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, p.id", searchOrderColumns[opts.OrderBy], dir)
}

// SearchPosts finds published posts in the given forums of the site. A reply
// only matches while its topic is published. Content is returned raw.
func (s *Storage) SearchPosts(ctx context.Context, siteId domain.SiteId, forumIds []domain.ForumId, opts domain.QueryOptions, memberId *domain.MemberId) ([]domain.SearchPost, int, error) {
	if len(forumIds) == 0 {
		return nil, 0, nil
	}

	var a args
	where := fmt.Sprintf(`c.site_id = %s
          AND p.forum_id = ANY(%s::uuid[])
          AND p.status = 0
          AND (t.id IS NULL OR t.status = 0)`, a.add(siteId), a.add(uuidArray(forumIds)))
	if opts.SearchIsDefined() {
		pattern := a.add(likePattern(opts.Search))
		where += fmt.Sprintf(" AND (COALESCE(p.title, t.title) ILIKE %s OR p.content ILIKE %s)", pattern, pattern)
	}
	if memberId != nil {
		where += fmt.Sprintf(" AND p.created_by = %s", a.add(*memberId))
	}
	from := `FROM posts p
        LEFT JOIN posts t ON t.id = p.topic_id
        ` + siteScope("p") + `
        JOIN members m ON m.id = p.created_by
        WHERE ` + where

	query := fmt.Sprintf(`
        SELECT
            p.id, COALESCE(p.topic_id, p.id), p.topic_id IS NULL,
            COALESCE(p.title, t.title, ''), COALESCE(p.slug, t.slug, ''),
            p.content, p.created_on, m.id, m.display_name,
            f.id, f.name, f.slug
        %s
        ORDER BY %s
        LIMIT %s OFFSET %s
    `, from, searchOrder(opts), a.add(opts.Take()), a.add(opts.Skip()))

	rows, err := s.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.SearchPost
	for rows.Next() {
		var p domain.SearchPost
		if err := rows.Scan(
			&p.Id, &p.TopicId, &p.IsTopic, &p.Title, &p.Slug,
			&p.Content, &p.TimeStamp, &p.MemberId, &p.MemberDisplayName,
			&p.ForumId, &p.ForumName, &p.ForumSlug,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, a[:len(a)-2]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return posts, total, nil
}
