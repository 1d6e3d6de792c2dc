package domain

// Commands carry SiteId, ForumId and MemberId so the executing service can
// re-check scope instead of trusting the caller.

type CreateTopic struct {
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
	Title    PostTitle
	Content  PostContent
	Status   StatusType
}

type UpdateTopic struct {
	Id       PostId
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
	Title    PostTitle
	Content  PostContent
	Status   StatusType
}

type PinTopic struct {
	Id       PostId
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
	Pinned   bool
}

type LockTopic struct {
	Id       PostId
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
	Locked   bool
}

type DeleteTopic struct {
	Id       PostId
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
}

type CreateReply struct {
	SiteId   SiteId
	ForumId  ForumId
	TopicId  PostId
	MemberId MemberId
	Content  PostContent
	Status   StatusType
}

type SetReplyAsAnswer struct {
	Id       PostId
	TopicId  PostId
	SiteId   SiteId
	ForumId  ForumId
	MemberId MemberId
	IsAnswer bool
}
