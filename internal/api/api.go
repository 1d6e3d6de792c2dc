// Package api holds the request bodies accepted by the HTTP layer.
package api

import "github.com/google/uuid"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateTopicRequest struct {
	ForumId uuid.UUID `json:"forum_id" validate:"required"`
	Title   string    `json:"title" validate:"required,max=200"`
	Content string    `json:"content" validate:"required,max=100000"`
}

type UpdateTopicRequest struct {
	ForumId uuid.UUID `json:"forum_id" validate:"required"`
	TopicId uuid.UUID `json:"topic_id" validate:"required"`
	Title   string    `json:"title" validate:"required,max=200"`
	Content string    `json:"content" validate:"required,max=100000"`
}

type CreateReplyRequest struct {
	ForumId uuid.UUID `json:"forum_id" validate:"required"`
	TopicId uuid.UUID `json:"topic_id" validate:"required"`
	Content string    `json:"content" validate:"required,max=100000"`
}

type CreateReplyResponse struct {
	Id uuid.UUID `json:"id"`
}
