package domain

import (
	"encoding/json"
	"strings"
)

// PermissionType is a forum action that can be granted to a role or member.
type PermissionType int16

const (
	PermissionRead PermissionType = iota
	PermissionStart
	PermissionReply
	PermissionEdit
	PermissionDelete
	PermissionModerate
)

var permissionNames = [...]string{"read", "start", "reply", "edit", "delete", "moderate"}

func AllPermissionTypes() []PermissionType {
	return []PermissionType{PermissionRead, PermissionStart, PermissionReply, PermissionEdit, PermissionDelete, PermissionModerate}
}

func (t PermissionType) Valid() bool {
	return t >= PermissionRead && t <= PermissionModerate
}

func (t PermissionType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return permissionNames[t]
}

// Built-in roles resolved for every principal.
const (
	RoleEveryone   RoleName = "everyone"
	RoleRegistered RoleName = "registered"
)

// Permission is a single grant of Type on a forum to a role or a member.
type Permission struct {
	ForumId  ForumId        `json:"forum_id"`
	Role     *RoleName      `json:"role,omitempty"`
	MemberId *MemberId      `json:"member_id,omitempty"`
	Type     PermissionType `json:"type"`
}

// PermissionSet is the aggregated grants of a principal on one forum.
type PermissionSet uint8

func NewPermissionSet(types ...PermissionType) PermissionSet {
	var s PermissionSet
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

func (s PermissionSet) With(t PermissionType) PermissionSet {
	if !t.Valid() {
		return s
	}
	return s | 1<<uint(t)
}

func (s PermissionSet) Contains(t PermissionType) bool {
	if !t.Valid() {
		return false
	}
	return s&(1<<uint(t)) != 0
}

func (s PermissionSet) Types() []PermissionType {
	var out []PermissionType
	for _, t := range AllPermissionTypes() {
		if s.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s PermissionSet) String() string {
	names := make([]string, 0, len(permissionNames))
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(permissionNames))
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return json.Marshal(names)
}

// Principal is who a request acts as. Member is nil for anonymous requests.
type Principal struct {
	MemberId *MemberId
	Roles    []RoleName
}

func Anonymous() Principal {
	return Principal{Roles: []RoleName{RoleEveryone}}
}

func PrincipalFor(member *Member) Principal {
	if member == nil {
		return Anonymous()
	}
	id := member.Id
	roles := append([]RoleName{RoleEveryone, RoleRegistered}, member.Roles...)
	return Principal{MemberId: &id, Roles: roles}
}

func (p Principal) IsAuthenticated() bool {
	return p.MemberId != nil
}

// Is reports whether the principal is the given member.
func (p Principal) Is(id MemberId) bool {
	return p.MemberId != nil && *p.MemberId == id
}
