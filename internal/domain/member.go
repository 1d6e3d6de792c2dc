package domain

import "time"

// Member is the forum identity, separate from the account record behind IdentityUserId.
type Member struct {
	Id             MemberId   `json:"id"`
	IdentityUserId string     `json:"user_id"`
	Email          Email      `json:"-"`
	DisplayName    string     `json:"display_name"`
	PasswordHash   string     `json:"-"`
	CreatedOn      time.Time  `json:"created_on"`
	Roles          []RoleName `json:"roles,omitempty"`
}

// MemberWithStats is a member with the number of published posts on a site.
type MemberWithStats struct {
	Member
	TotalPosts int
}
