package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ForumPost struct {
	gorm.Model
	UserID   uint           `json:"userID" gorm:"not null;index"`
	User     User           `json:"user" gorm:"foreignKey:UserID"`
	Title    string         `json:"title" gorm:"not null"`
	Body     string         `json:"body" gorm:"type:text"`
	Tags     datatypes.JSON `json:"tags"`
	Likes    int            `json:"likes" gorm:"default:0"`
	Comments []ForumComment `json:"comments" gorm:"foreignKey:PostID"`
}

type ForumComment struct {
	gorm.Model
	PostID uint   `json:"postID" gorm:"not null;index"`
	UserID uint   `json:"userID" gorm:"not null;index"`
	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Body   string `json:"body" gorm:"type:text;not null"`
}
