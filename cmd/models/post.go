package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	UserID       uint   `gorm:"column:user_id;not null;index" json:"user_id"`
	TextContent  string `gorm:"column:text_content;type:text;not null" json:"text_content"`
	MediaContent []byte `gorm:"column:media_content" json:"media_content,omitempty"`
	MediaType    string `gorm:"column:media_type;size:100" json:"media_type,omitempty"`
	LikesCount   int    `gorm:"column:likes_count;default:0" json:"likes_count"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// Like and Comment are hard-deleted: a soft-deleted like would keep blocking
// the (post_id, user_id) unique index after an unlike.

type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"column:post_id;not null;uniqueIndex:idx_like_post_user" json:"post_id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_like_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"column:post_id;not null;index" json:"post_id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
