package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"

	"github.com/google/uuid"
)

const postWithAuthorColumns = `
            p.id, p.forum_id, p.topic_id, COALESCE(p.title, ''), COALESCE(p.slug, ''), p.content, p.status,
            p.pinned, p.locked, p.is_answer, p.has_answer, p.created_by, p.created_on, p.modified_on,
            m.id, m.identity_user_id, m.display_name, m.email,
            f.id, f.name, f.slug`

func scanPostWithAuthor(row interface{ Scan(...any) error }) (domain.PostWithAuthor, error) {
	var p domain.PostWithAuthor
	var topicId uuid.NullUUID
	var modifiedOn sql.NullTime
	err := row.Scan(
		&p.Id, &p.ForumId, &topicId, &p.Title, &p.Slug, &p.Content, &p.Status,
		&p.Pinned, &p.Locked, &p.IsAnswer, &p.HasAnswer, &p.CreatedBy, &p.CreatedOn, &modifiedOn,
		&p.Author.Id, &p.Author.IdentityUserId, &p.Author.DisplayName, &p.Author.Email,
		&p.Forum.Id, &p.Forum.Name, &p.Forum.Slug,
	)
	if err != nil {
		return p, err
	}
	if topicId.Valid {
		id := topicId.UUID
		p.TopicId = &id
	}
	if modifiedOn.Valid {
		t := modifiedOn.Time
		p.ModifiedOn = &t
	}
	return p, nil
}

// GetTopicBySlug returns a published topic of the site located by forum and topic slugs.
func (s *Storage) GetTopicBySlug(ctx context.Context, siteId domain.SiteId, forumSlug, topicSlug domain.Slug) (domain.PostWithAuthor, error) {
	topic, err := scanPostWithAuthor(s.db.QueryRowContext(ctx, `
        SELECT `+postWithAuthorColumns+`
        FROM posts p
        `+siteScope("p")+`
        JOIN members m ON m.id = p.created_by
        WHERE p.topic_id IS NULL
          AND c.site_id = $1
          AND f.slug = $2
          AND p.slug = $3
          AND p.status = 0
        LIMIT 1
    `, siteId, forumSlug, topicSlug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PostWithAuthor{}, internal_errors.NotFound("Topic not found")
		}
		return domain.PostWithAuthor{}, fmt.Errorf("failed to fetch topic: %w", err)
	}
	return topic, nil
}

// GetTopic returns a non deleted topic by id within site and forum.
func (s *Storage) GetTopic(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.PostWithAuthor, error) {
	topic, err := scanPostWithAuthor(s.db.QueryRowContext(ctx, `
        SELECT `+postWithAuthorColumns+`
        FROM posts p
        `+siteScope("p")+`
        JOIN members m ON m.id = p.created_by
        WHERE p.id = $1
          AND p.topic_id IS NULL
          AND p.forum_id = $2
          AND c.site_id = $3
          AND p.status <> 1
    `, topicId, forumId, siteId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PostWithAuthor{}, internal_errors.NotFound("Topic not found")
		}
		return domain.PostWithAuthor{}, fmt.Errorf("failed to fetch topic: %w", err)
	}
	return topic, nil
}

// GetTopicInfo loads author and lock state used to authorize a topic mutation.
func (s *Storage) GetTopicInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId) (domain.TopicInfo, error) {
	info := domain.TopicInfo{Id: topicId, ForumId: forumId}
	err := s.db.QueryRowContext(ctx, `
        SELECT p.created_by, p.locked
        FROM posts p
        `+siteScope("p")+`
        WHERE p.id = $1
          AND p.topic_id IS NULL
          AND p.forum_id = $2
          AND c.site_id = $3
          AND p.status <> 1
    `, topicId, forumId, siteId).Scan(&info.MemberId, &info.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TopicInfo{}, internal_errors.NotFound("Topic not found")
		}
		return domain.TopicInfo{}, fmt.Errorf("failed to fetch topic info: %w", err)
	}
	return info, nil
}

// GetTopicAnswer returns the published answer of a topic, or nil if there is none.
func (s *Storage) GetTopicAnswer(ctx context.Context, siteId domain.SiteId, topicId domain.PostId) (*domain.PostWithAuthor, error) {
	answer, err := scanPostWithAuthor(s.db.QueryRowContext(ctx, `
        SELECT `+postWithAuthorColumns+`
        FROM posts p
        `+siteScope("p")+`
        JOIN members m ON m.id = p.created_by
        WHERE p.topic_id = $1
          AND c.site_id = $2
          AND p.status = 0
          AND p.is_answer
        LIMIT 1
    `, topicId, siteId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch answer: %w", err)
	}
	return &answer, nil
}

// GetTopicReplies pages through published, non answer replies in posting order.
// The count runs over the same predicate as the page.
func (s *Storage) GetTopicReplies(ctx context.Context, siteId domain.SiteId, topicId domain.PostId, opts domain.QueryOptions) ([]domain.PostWithAuthor, int, error) {
	var a args
	where := fmt.Sprintf("c.site_id = %s AND p.topic_id = %s AND p.status = 0 AND p.is_answer = FALSE",
		a.add(siteId), a.add(topicId))
	if opts.SearchIsDefined() {
		where += fmt.Sprintf(" AND p.content ILIKE %s", a.add(likePattern(opts.Search)))
	}
	from := `FROM posts p
        ` + siteScope("p") + `
        JOIN members m ON m.id = p.created_by
        WHERE ` + where

	query := fmt.Sprintf(`
        SELECT %s
        %s
        ORDER BY p.created_on ASC, p.id
        LIMIT %s OFFSET %s
    `, postWithAuthorColumns, from, a.add(opts.Take()), a.add(opts.Skip()))

	rows, err := s.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.PostWithAuthor
	for rows.Next() {
		reply, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, a[:len(a)-2]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return replies, total, nil
}

// TopicSlugExists checks topic slugs of a forum, ignoring exclude (the topic being renamed).
func (s *Storage) TopicSlugExists(ctx context.Context, forumId domain.ForumId, slug domain.Slug, exclude *domain.PostId) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM posts
            WHERE forum_id = $1 AND topic_id IS NULL AND slug = $2
              AND ($3::uuid IS NULL OR id <> $3::uuid)
        )
    `, forumId, slug, nullMember(exclude)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// CreateTopic inserts a topic if its forum belongs to the site.
func (s *Storage) CreateTopic(ctx context.Context, siteId domain.SiteId, topic domain.Post) error {
	result, err := s.db.ExecContext(ctx, `
        INSERT INTO posts (id, forum_id, topic_id, title, slug, content, status, created_by, created_on)
        SELECT $1, f.id, NULL, $3, $4, $5, $6, $7, $8
        FROM forums f
        JOIN categories c ON c.id = f.category_id
        WHERE f.id = $2 AND c.site_id = $9
    `, topic.Id, topic.ForumId, topic.Title, topic.Slug, topic.Content, topic.Status, topic.CreatedBy, topic.CreatedOn, siteId)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to insert topic: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Forum not found")
	}
	return nil
}

// UpdateTopic edits title, slug and content of a non deleted topic in scope.
func (s *Storage) UpdateTopic(ctx context.Context, cmd domain.UpdateTopic, slug domain.Slug, modifiedOn time.Time) error {
	return s.updateTopic(ctx, cmd.SiteId, cmd.ForumId, cmd.Id,
		"title = $4, slug = $5, content = $6, status = $7, modified_on = $8, modified_by = $9",
		cmd.Title, slug, cmd.Content, cmd.Status, modifiedOn, cmd.MemberId)
}

func (s *Storage) SetTopicPinned(ctx context.Context, cmd domain.PinTopic) error {
	return s.updateTopic(ctx, cmd.SiteId, cmd.ForumId, cmd.Id, "pinned = $4", cmd.Pinned)
}

func (s *Storage) SetTopicLocked(ctx context.Context, cmd domain.LockTopic) error {
	return s.updateTopic(ctx, cmd.SiteId, cmd.ForumId, cmd.Id, "locked = $4", cmd.Locked)
}

// DeleteTopic is a soft delete, rows are never removed.
func (s *Storage) DeleteTopic(ctx context.Context, cmd domain.DeleteTopic, modifiedOn time.Time) error {
	return s.updateTopic(ctx, cmd.SiteId, cmd.ForumId, cmd.Id,
		"status = $4, modified_on = $5, modified_by = $6",
		domain.StatusDeleted, modifiedOn, cmd.MemberId)
}

// updateTopic applies set to a non deleted topic of the forum and site.
// set must reference parameters from $4 on.
func (s *Storage) updateTopic(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId domain.PostId, set string, values ...interface{}) error {
	params := append([]interface{}{topicId, forumId, siteId}, values...)
	result, err := s.db.ExecContext(ctx, `
        UPDATE posts p SET `+set+`
        FROM forums f
        JOIN categories c ON c.id = f.category_id
        WHERE p.id = $1
          AND p.topic_id IS NULL
          AND p.forum_id = $2
          AND f.id = p.forum_id
          AND c.site_id = $3
          AND p.status <> 1
    `, params...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to update topic: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Topic not found")
	}
	return nil
}
