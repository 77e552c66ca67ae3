package models

import "time"

// FezPost is a discussion post attached to a fez barrel. Posts are ordered
// by creation time and deleted only by their author.
type FezPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BarrelID  uint      `gorm:"not null;index" json:"fez_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImageRef  string    `json:"image_ref,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (FezPost) TableName() string {
	return "fez_posts"
}
