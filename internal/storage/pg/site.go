package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
)

func (s *Storage) GetSiteByHost(ctx context.Context, host string) (domain.Site, error) {
	return s.getSite(ctx, "host = $1", host)
}

func (s *Storage) GetSiteByName(ctx context.Context, name string) (domain.Site, error) {
	return s.getSite(ctx, "name = $1", name)
}

func (s *Storage) getSite(ctx context.Context, where string, arg string) (domain.Site, error) {
	var site domain.Site
	var host sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, title, host FROM sites WHERE "+where, arg,
	).Scan(&site.Id, &site.Name, &site.Title, &host)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Site{}, internal_errors.NotFound("Site not found")
		}
		return domain.Site{}, fmt.Errorf("failed to fetch site: %w", err)
	}
	site.Host = host.String
	return site, nil
}

// GetIndex returns every category of the site with its forums and counts.
func (s *Storage) GetIndex(ctx context.Context, siteId domain.SiteId) ([]domain.IndexCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            c.id, c.name, f.id, f.name, f.slug, f.description,
            (SELECT COUNT(*) FROM posts p
              WHERE p.forum_id = f.id AND p.topic_id IS NULL AND p.status = 0),
            (SELECT COUNT(*) FROM posts p JOIN posts t ON t.id = p.topic_id
              WHERE p.forum_id = f.id AND p.status = 0 AND t.status = 0)
        FROM categories c
        JOIN forums f ON f.category_id = c.id
        WHERE c.site_id = $1
        ORDER BY c.sort_order, c.name, c.id, f.sort_order, f.name
    `, siteId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer rows.Close()

	var categories []domain.IndexCategory
	for rows.Next() {
		var categoryId domain.CategoryId
		var categoryName string
		var forum domain.IndexForum
		if err := rows.Scan(
			&categoryId, &categoryName, &forum.Id, &forum.Name, &forum.Slug, &forum.Description,
			&forum.TotalTopics, &forum.TotalReplies,
		); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}
		if n := len(categories); n == 0 || categories[n-1].Id != categoryId {
			categories = append(categories, domain.IndexCategory{Id: categoryId, Name: categoryName})
		}
		last := &categories[len(categories)-1]
		last.Forums = append(last.Forums, forum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return categories, nil
}
