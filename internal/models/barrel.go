package models

import (
	"time"
)

// BarrelType tags the purpose of a barrel. The type never changes after
// creation, and each type interprets the attribute map with its own schema.
type BarrelType string

const (
	// BarrelTypeFriendFez is a group-activity roster (a "fez").
	BarrelTypeFriendFez BarrelType = "friendfez"
	// BarrelTypeBookmarks is a user's collection of bookmarked fezzes.
	BarrelTypeBookmarks BarrelType = "bookmarks"
	// BarrelTypeAlertKeywords holds a user's alert keywords.
	BarrelTypeAlertKeywords BarrelType = "alertkeywords"
	// BarrelTypeMuteKeywords holds a user's muted keywords.
	BarrelTypeMuteKeywords BarrelType = "mutekeywords"
	// BarrelTypeStringSet is a generic named string set.
	BarrelTypeStringSet BarrelType = "stringset"
	// BarrelTypeTaggedEvent tags schedule events.
	BarrelTypeTaggedEvent BarrelType = "taggedevent"
	// BarrelTypeTaggedForum tags forum threads.
	BarrelTypeTaggedForum BarrelType = "taggedforum"
	// BarrelTypeBlocks is a user's block list.
	BarrelTypeBlocks BarrelType = "blocks"
	// BarrelTypeMutes is a user's mute list.
	BarrelTypeMutes BarrelType = "mutes"
	// BarrelTypeUserSet is a generic named user set.
	BarrelTypeUserSet BarrelType = "userset"
)

// UintList is an ordered list of IDs stored as a JSON column.
type UintList []uint

// AttributeMap maps string keys to ordered string-value lists, stored as a
// JSON column. Each barrel type defines its own key schema; the store itself
// performs no validation.
type AttributeMap map[string][]string

// Barrel is a generic owned container of member IDs plus string attributes,
// reused across unrelated features (fez rosters, bookmarks, keyword lists,
// block and mute lists). Member order is join order and is the basis for
// waitlist fairness.
type Barrel struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	OwnerID    uint         `gorm:"not null;index:idx_barrels_owner_type" json:"owner_id"`
	Type       BarrelType   `gorm:"type:varchar(20);not null;index:idx_barrels_owner_type;index:idx_barrels_type" json:"type"`
	Name       string       `gorm:"size:200;not null" json:"name"`
	MemberIDs  UintList     `gorm:"serializer:json;type:text" json:"member_ids"`
	Attributes AttributeMap `gorm:"serializer:json;type:text" json:"attributes"`
	// Version guards read-modify-write cycles; saves with a stale version are
	// rejected with a CONFLICT error.
	Version   uint      `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Barrel) TableName() string {
	return "barrels"
}

// HasMember reports whether userID is in the member list.
func (b *Barrel) HasMember(userID uint) bool {
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember appends userID to the member list, preserving join order.
// Returns false if the user is already a member; duplicates are never stored.
func (b *Barrel) AddMember(userID uint) bool {
	if b.HasMember(userID) {
		return false
	}
	b.MemberIDs = append(b.MemberIDs, userID)
	return true
}

// RemoveMember removes userID from the member list, preserving the order of
// the remaining members. Returns false if the user was not a member.
func (b *Barrel) RemoveMember(userID uint) bool {
	for i, id := range b.MemberIDs {
		if id == userID {
			b.MemberIDs = append(b.MemberIDs[:i], b.MemberIDs[i+1:]...)
			return true
		}
	}
	return false
}

// MemberSet returns the member list as a lookup set.
func (b *Barrel) MemberSet() map[uint]bool {
	set := make(map[uint]bool, len(b.MemberIDs))
	for _, id := range b.MemberIDs {
		set[id] = true
	}
	return set
}

// AttributeValue returns the first value stored under key, or "" if unset.
func (b *Barrel) AttributeValue(key string) string {
	if vals, ok := b.Attributes[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// SetAttributeValue replaces the values under key with a single value.
func (b *Barrel) SetAttributeValue(key, value string) {
	if b.Attributes == nil {
		b.Attributes = AttributeMap{}
	}
	b.Attributes[key] = []string{value}
}

// AttributeList returns all values stored under key.
func (b *Barrel) AttributeList(key string) []string {
	return b.Attributes[key]
}

// AddAttributeListValue appends value to the list under key if not present.
// Returns false if the value was already in the list.
func (b *Barrel) AddAttributeListValue(key, value string) bool {
	if b.Attributes == nil {
		b.Attributes = AttributeMap{}
	}
	for _, v := range b.Attributes[key] {
		if v == value {
			return false
		}
	}
	b.Attributes[key] = append(b.Attributes[key], value)
	return true
}

// RemoveAttributeListValue removes value from the list under key.
// Returns false if the value was not in the list.
func (b *Barrel) RemoveAttributeListValue(key, value string) bool {
	vals := b.Attributes[key]
	for i, v := range vals {
		if v == value {
			b.Attributes[key] = append(vals[:i], vals[i+1:]...)
			return true
		}
	}
	return false
}
