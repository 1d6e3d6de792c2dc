package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"
)

// CreateReply inserts a reply if its topic is a published topic of the forum and site.
func (s *Storage) CreateReply(ctx context.Context, siteId domain.SiteId, reply domain.Post) error {
	if reply.TopicId == nil {
		return internal_errors.BadRequest("Reply must reference a topic")
	}
	result, err := s.db.ExecContext(ctx, `
        INSERT INTO posts (id, forum_id, topic_id, content, status, created_by, created_on)
        SELECT $1, t.forum_id, t.id, $4, $5, $6, $7
        FROM posts t
        JOIN forums f ON f.id = t.forum_id
        JOIN categories c ON c.id = f.category_id
        WHERE t.id = $2
          AND t.forum_id = $3
          AND t.topic_id IS NULL
          AND t.status = 0
          AND c.site_id = $8
    `, reply.Id, *reply.TopicId, reply.ForumId, reply.Content, reply.Status, reply.CreatedBy, reply.CreatedOn, siteId)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Topic not found")
	}
	return nil
}

// GetReplyInfo loads a published reply along with the author of its topic.
func (s *Storage) GetReplyInfo(ctx context.Context, siteId domain.SiteId, forumId domain.ForumId, topicId, replyId domain.PostId) (domain.ReplyInfo, error) {
	info := domain.ReplyInfo{Id: replyId, TopicId: topicId, ForumId: forumId}
	err := s.db.QueryRowContext(ctx, `
        SELECT p.created_by, t.created_by
        FROM posts p
        JOIN posts t ON t.id = p.topic_id
        `+siteScope("p")+`
        WHERE p.id = $1
          AND p.topic_id = $2
          AND p.forum_id = $3
          AND c.site_id = $4
          AND p.status = 0
          AND t.status = 0
    `, replyId, topicId, forumId, siteId).Scan(&info.MemberId, &info.TopicMemberId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReplyInfo{}, internal_errors.NotFound("Reply not found")
		}
		return domain.ReplyInfo{}, fmt.Errorf("failed to fetch reply info: %w", err)
	}
	return info, nil
}

// SetReplyAsAnswer flags or unflags a reply as the answer of its topic.
// Any previous answer is cleared in the same transaction.
func (s *Storage) SetReplyAsAnswer(ctx context.Context, cmd domain.SetReplyAsAnswer) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	// lock the topic row so concurrent answer changes serialize
	var topicId domain.PostId
	err = tx.QueryRowContext(ctx, `
        SELECT t.id
        FROM posts t
        `+siteScope("t")+`
        WHERE t.id = $1
          AND t.forum_id = $2
          AND t.topic_id IS NULL
          AND t.status = 0
          AND c.site_id = $3
        FOR UPDATE OF t
    `, cmd.TopicId, cmd.ForumId, cmd.SiteId).Scan(&topicId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return internal_errors.NotFound("Topic not found")
		}
		return fmt.Errorf("failed to lock topic: %w", err)
	}

	if cmd.IsAnswer {
		if _, err = tx.ExecContext(ctx,
			"UPDATE posts SET is_answer = FALSE WHERE topic_id = $1 AND is_answer AND id <> $2",
			cmd.TopicId, cmd.Id,
		); err != nil {
			return fmt.Errorf("failed to clear previous answer: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE posts SET is_answer = $1 WHERE id = $2 AND topic_id = $3 AND status = 0",
		cmd.IsAnswer, cmd.Id, cmd.TopicId,
	)
	if err != nil {
		return fmt.Errorf("failed to set answer: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Reply not found")
	}

	if _, err = tx.ExecContext(ctx, `
        UPDATE posts SET has_answer = EXISTS (
            SELECT 1 FROM posts r WHERE r.topic_id = $1 AND r.is_answer AND r.status = 0
        )
        WHERE id = $1
    `, cmd.TopicId); err != nil {
		return fmt.Errorf("failed to update topic answer flag: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
