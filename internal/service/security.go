package service

import "github.com/atlas-forum/atlas/internal/domain"

// Authorization policy. Every function here is pure: the outcome depends only
// on the permission set of the principal on one forum and the facts passed in.
// Moderate overrides each expression individually; it is not treated as a
// superset of the other grants.

func HasPermission(t domain.PermissionType, set domain.PermissionSet) bool {
	return set.Contains(t)
}

func CanRead(set domain.PermissionSet) bool {
	return HasPermission(domain.PermissionRead, set)
}

func CanStart(set domain.PermissionSet) bool {
	return HasPermission(domain.PermissionStart, set)
}

func CanEdit(set domain.PermissionSet, isAuthor, locked bool) bool {
	return HasPermission(domain.PermissionEdit, set) && isAuthor && !locked ||
		HasPermission(domain.PermissionModerate, set)
}

func CanDelete(set domain.PermissionSet, isAuthor bool) bool {
	return HasPermission(domain.PermissionDelete, set) && isAuthor ||
		HasPermission(domain.PermissionModerate, set)
}

func CanModerate(set domain.PermissionSet) bool {
	return HasPermission(domain.PermissionModerate, set)
}

func CanPin(set domain.PermissionSet) bool {
	return CanModerate(set)
}

func CanLock(set domain.PermissionSet) bool {
	return CanModerate(set)
}

func CanReply(set domain.PermissionSet, locked bool) bool {
	return HasPermission(domain.PermissionReply, set) && !locked ||
		HasPermission(domain.PermissionModerate, set)
}

// CanSetAnswer lets the topic author or a moderator pick the answer.
func CanSetAnswer(set domain.PermissionSet, isTopicAuthor bool) bool {
	return CanRead(set) && isTopicAuthor || CanModerate(set)
}
