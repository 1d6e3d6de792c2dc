package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
)

const forumColumns = "f.id, f.category_id, c.site_id, f.name, f.slug, f.description, f.sort_order"

func scanForum(row interface{ Scan(...any) error }) (domain.Forum, error) {
	var f domain.Forum
	err := row.Scan(&f.Id, &f.CategoryId, &f.SiteId, &f.Name, &f.Slug, &f.Description, &f.SortOrder)
	return f, err
}

func (s *Storage) GetForumById(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId) (domain.Forum, error) {
	forum, err := scanForum(s.db.QueryRowContext(ctx, `
        SELECT `+forumColumns+`
        FROM forums f
        JOIN categories c ON c.id = f.category_id
        WHERE c.site_id = $1 AND f.id = $2
    `, siteId, forumId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Forum{}, internal_errors.NotFound("Forum not found")
		}
		return domain.Forum{}, fmt.Errorf("failed to fetch forum: %w", err)
	}
	return forum, nil
}

// GetForumBySlug relies on forum slugs being unique per site.
func (s *Storage) GetForumBySlug(ctx context.Context, siteId domain.SiteId, slug domain.Slug) (domain.Forum, error) {
	forum, err := scanForum(s.db.QueryRowContext(ctx, `
        SELECT `+forumColumns+`
        FROM forums f
        JOIN categories c ON c.id = f.category_id
        WHERE c.site_id = $1 AND f.slug = $2
    `, siteId, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Forum{}, internal_errors.NotFound("Forum not found")
		}
		return domain.Forum{}, fmt.Errorf("failed to fetch forum: %w", err)
	}
	return forum, nil
}

// GetForumTopics lists published topics of a forum, pinned first then by last activity.
func (s *Storage) GetForumTopics(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, opts domain.QueryOptions) ([]domain.ForumTopicItem, int, error) {
	var a args
	where := fmt.Sprintf("c.site_id = %s AND p.forum_id = %s AND p.topic_id IS NULL AND p.status = 0",
		a.add(siteId), a.add(forumId))
	if opts.SearchIsDefined() {
		where += fmt.Sprintf(" AND p.title ILIKE %s", a.add(likePattern(opts.Search)))
	}
	from := `FROM posts p
        ` + siteScope("p") + `
        JOIN members m ON m.id = p.created_by
        WHERE ` + where

	query := fmt.Sprintf(`
        SELECT
            p.id, p.title, p.slug, p.pinned, p.locked, p.has_answer, p.created_on,
            m.id, m.display_name,
            (SELECT COUNT(*) FROM posts r WHERE r.topic_id = p.id AND r.status = 0),
            COALESCE((SELECT MAX(r.created_on) FROM posts r WHERE r.topic_id = p.id AND r.status = 0), p.created_on) AS last_activity
        %s
        ORDER BY p.pinned DESC, last_activity DESC, p.id
        LIMIT %s OFFSET %s
    `, from, a.add(opts.Take()), a.add(opts.Skip()))

	rows, err := s.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch forum topics: %w", err)
	}
	defer rows.Close()

	var items []domain.ForumTopicItem
	for rows.Next() {
		var it domain.ForumTopicItem
		if err := rows.Scan(
			&it.Id, &it.Title, &it.Slug, &it.Pinned, &it.Locked, &it.HasAnswer, &it.TimeStamp,
			&it.MemberId, &it.MemberDisplayName, &it.TotalReplies, &it.LastActivity,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan forum topic: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	// same predicate, without paging params
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, a[:len(a)-2]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count forum topics: %w", err)
	}
	return items, total, nil
}
