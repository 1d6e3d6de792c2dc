package domain

import "github.com/google/uuid"

type (
	SiteId     = uuid.UUID
	CategoryId = uuid.UUID
	ForumId    = uuid.UUID
	PostId     = uuid.UUID
	MemberId   = uuid.UUID

	Slug        = string
	PostTitle   = string
	PostContent = string
	Email       = string
	Password    = string
	RoleName    = string
)

// StatusType is the publication state of a post. Deleted is a soft delete.
type StatusType int16

const (
	StatusPublished StatusType = 0
	StatusDeleted   StatusType = 1
)

func (s StatusType) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
