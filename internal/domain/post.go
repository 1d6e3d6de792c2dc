package domain

import (
	"errors"
	"time"
)

// ErrSlugConflict is returned by storage when a topic slug is already taken in its forum.
var ErrSlugConflict = errors.New("slug already exists in forum")

// Post is either a topic (TopicId == nil) or a reply to one.
type Post struct {
	Id         PostId      `json:"id"`
	ForumId    ForumId     `json:"forum_id"`
	TopicId    *PostId     `json:"topic_id,omitempty"`
	Title      PostTitle   `json:"title,omitempty"`
	Slug       Slug        `json:"slug,omitempty"`
	Content    PostContent `json:"content"`
	Status     StatusType  `json:"status"`
	Pinned     bool        `json:"pinned"`
	Locked     bool        `json:"locked"`
	IsAnswer   bool        `json:"is_answer"`
	HasAnswer  bool        `json:"has_answer"`
	CreatedBy  MemberId    `json:"created_by"`
	CreatedOn  time.Time   `json:"created_on"`
	ModifiedOn *time.Time  `json:"modified_on,omitempty"`
}

func (p *Post) IsTopic() bool {
	return p.TopicId == nil
}

// PostWithAuthor is a post row joined with its author and forum.
type PostWithAuthor struct {
	Post
	Author Member
	Forum  Forum
}

// TopicInfo is the minimum needed to authorize a mutation on a topic.
type TopicInfo struct {
	Id       PostId
	ForumId  ForumId
	MemberId MemberId
	Locked   bool
}

// ReplyInfo is the minimum needed to authorize an answer change.
type ReplyInfo struct {
	Id            PostId
	TopicId       PostId
	ForumId       ForumId
	MemberId      MemberId
	TopicMemberId MemberId
}
