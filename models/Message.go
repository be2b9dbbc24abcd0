package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	gorm.Model
	ConversationID uint   `json:"conversationID" gorm:"not null;index"`
	SenderID       uint   `json:"senderID"`
	ReceiverID     uint   `json:"receiverID"`
	Text           string `json:"text" gorm:"type:text"`
	// Optional attachment stored under /uploads
	AttachmentURL  string `json:"attachmentURL" gorm:"size:512"`
	AttachmentType string `json:"attachmentType" gorm:"size:32"` // image | video | pdf
	// Delivery state
	State       string     `json:"state" gorm:"size:16;index"` // sent|delivered|seen
	DeliveredAt *time.Time `json:"deliveredAt"`
	SeenAt      *time.Time `json:"seenAt"`
}
