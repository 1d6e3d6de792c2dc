package domain

import "time"

// Page models are built fresh per request and discarded after serialization.

type ForumRef struct {
	Id   ForumId `json:"id"`
	Name string  `json:"name"`
	Slug Slug    `json:"slug"`
}

type TopicView struct {
	Id                PostId      `json:"id"`
	ForumId           ForumId     `json:"forum_id"`
	Title             PostTitle   `json:"title"`
	Slug              Slug        `json:"slug"`
	Content           string      `json:"content"`
	OriginalContent   PostContent `json:"original_content"`
	MemberId          MemberId    `json:"member_id"`
	MemberDisplayName string      `json:"member_display_name"`
	UserId            string      `json:"user_id"`
	GravatarHash      string      `json:"gravatar_hash"`
	TimeStamp         time.Time   `json:"time_stamp"`
	Pinned            bool        `json:"pinned"`
	Locked            bool        `json:"locked"`
	HasAnswer         bool        `json:"has_answer"`
}

type ReplyView struct {
	Id                PostId      `json:"id"`
	Content           string      `json:"content"`
	OriginalContent   PostContent `json:"original_content"`
	MemberId          MemberId    `json:"member_id"`
	MemberDisplayName string      `json:"member_display_name"`
	UserId            string      `json:"user_id"`
	GravatarHash      string      `json:"gravatar_hash"`
	TimeStamp         time.Time   `json:"time_stamp"`
	IsAnswer          bool        `json:"is_answer"`
}

type TopicPage struct {
	Forum       ForumRef                 `json:"forum"`
	Topic       TopicView                `json:"topic"`
	Replies     PaginatedData[ReplyView] `json:"replies"`
	Answer      *ReplyView               `json:"answer,omitempty"`
	CanEdit     bool                     `json:"can_edit"`
	CanReply    bool                     `json:"can_reply"`
	CanDelete   bool                     `json:"can_delete"`
	CanModerate bool                     `json:"can_moderate"`
}

// PostTopic is the raw (unrendered) topic used by the editor.
type PostTopic struct {
	Id       PostId      `json:"id"`
	Title    PostTitle   `json:"title"`
	Content  PostContent `json:"content"`
	MemberId MemberId    `json:"member_id"`
	Locked   bool        `json:"locked"`
}

type PostPage struct {
	Forum ForumRef   `json:"forum"`
	Topic *PostTopic `json:"topic,omitempty"`
}

type ForumView struct {
	Id          ForumId `json:"id"`
	Name        string  `json:"name"`
	Slug        Slug    `json:"slug"`
	Description string  `json:"description"`
}

type ForumTopicItem struct {
	Id                PostId    `json:"id"`
	Title             PostTitle `json:"title"`
	Slug              Slug      `json:"slug"`
	TotalReplies      int       `json:"total_replies"`
	MemberId          MemberId  `json:"member_id"`
	MemberDisplayName string    `json:"member_display_name"`
	TimeStamp         time.Time `json:"time_stamp"`
	LastActivity      time.Time `json:"last_activity"`
	Pinned            bool      `json:"pinned"`
	Locked            bool      `json:"locked"`
	HasAnswer         bool      `json:"has_answer"`
}

type ForumPage struct {
	Forum    ForumView                     `json:"forum"`
	Topics   PaginatedData[ForumTopicItem] `json:"topics"`
	CanStart bool                          `json:"can_start"`
}

type SearchPost struct {
	Id                PostId    `json:"id"`
	TopicId           PostId    `json:"topic_id"`
	IsTopic           bool      `json:"is_topic"`
	Title             PostTitle `json:"title"`
	Slug              Slug      `json:"slug"`
	Content           string    `json:"content"`
	TimeStamp         time.Time `json:"time_stamp"`
	MemberId          MemberId  `json:"member_id"`
	MemberDisplayName string    `json:"member_display_name"`
	ForumId           ForumId   `json:"forum_id"`
	ForumName         string    `json:"forum_name"`
	ForumSlug         Slug      `json:"forum_slug"`
}

type SearchPage struct {
	Posts PaginatedData[SearchPost] `json:"posts"`
}

type MemberView struct {
	Id           MemberId  `json:"id"`
	DisplayName  string    `json:"display_name"`
	GravatarHash string    `json:"gravatar_hash"`
	TotalPosts   int       `json:"total_posts"`
	CreatedOn    time.Time `json:"created_on"`
}

type MemberPage struct {
	Member MemberView                `json:"member"`
	Posts  PaginatedData[SearchPost] `json:"posts"`
}

type MembersPage struct {
	Members PaginatedData[MemberView] `json:"members"`
}

type IndexForum struct {
	Id           ForumId `json:"id"`
	Name         string  `json:"name"`
	Slug         Slug    `json:"slug"`
	Description  string  `json:"description"`
	TotalTopics  int     `json:"total_topics"`
	TotalReplies int     `json:"total_replies"`
}

type IndexCategory struct {
	Id     CategoryId   `json:"id"`
	Name   string       `json:"name"`
	Forums []IndexForum `json:"forums"`
}

type IndexPage struct {
	Site       Site            `json:"site"`
	Categories []IndexCategory `json:"categories"`
}
