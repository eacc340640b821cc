package models

import "time"

// GroupRole is the role of a member inside a community group.
type GroupRole string

const (
	// GroupRoleOwner created the group and cannot leave it.
	GroupRoleOwner GroupRole = "owner"
	// GroupRoleMember joined the group.
	GroupRoleMember GroupRole = "member"
)

// Group is a community group users can join and post micro-posts into.
type Group struct {
	ID          uint64        `gorm:"primaryKey"                    json:"id"`
	Name        string        `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string        `gorm:"type:text"                     json:"description,omitempty"`
	OwnerID     uint64        `gorm:"index;not null"                json:"ownerId"`
	Members     []GroupMember `gorm:"constraint:OnDelete:CASCADE"   json:"-"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	GroupID  uint64    `gorm:"primaryKey;autoIncrement:false" json:"groupId"`
	UserID   uint64    `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	User     User      `gorm:"constraint:OnDelete:CASCADE"    json:"user"`
	Role     GroupRole `gorm:"type:varchar(20);not null"      json:"role"`
	JoinedAt time.Time `gorm:"not null"                       json:"joinedAt"`
}
